package mcpserver

import (
	"time"

	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/wizard"
)

type fieldView struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Kind     wizard.Kind `json:"kind"`
	Required bool        `json:"required,omitempty"`
	Value    any         `json:"value"`
	Error    string      `json:"error,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Help     string      `json:"help,omitempty"`
}

type stepView struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

type stateView struct {
	Session    string      `json:"session"`
	Form       string      `json:"form"`
	Mode       wizard.Mode `json:"mode"`
	RecordID   string      `json:"record_id,omitempty"`
	Current    int         `json:"current_step"`
	StepTitle  string      `json:"step_title"`
	Terminal   bool        `json:"terminal"`
	Submitting bool        `json:"submitting"`
	Steps      []stepView  `json:"steps"`
	Fields     []fieldView `json:"fields"`
	Notices    []notice    `json:"notices,omitempty"`
	Submitted  string      `json:"submitted_record,omitempty"`
}

type validationView struct {
	Step     int               `json:"step"`
	Valid    bool              `json:"valid"`
	Failures map[string]string `json:"failures,omitempty"`
}

type formView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	Steps       []stepView `json:"steps"`
}

type recordView struct {
	ID        string         `json:"id"`
	Version   int            `json:"version"`
	UpdatedAt string         `json:"updated_at"`
	Values    map[string]any `json:"values"`
}

func newValidationView(res wizard.ValidationResult) validationView {
	v := validationView{Step: res.Step, Valid: res.IsValid()}
	if !v.Valid {
		v.Failures = res.Failures
	}
	return v
}

// view renders the session for a tool result and drains its notices.
func (ss *session) view() stateView {
	schema := ss.wiz.Schema()
	st := ss.wiz.State()
	errs := ss.wiz.Errors()
	_, last := ss.exitAndRecord()

	v := stateView{
		Session:    ss.id,
		Form:       schema.ID,
		Mode:       st.Mode,
		RecordID:   st.RecordID,
		Current:    st.CurrentStep,
		Terminal:   st.CurrentStep == schema.Last(),
		Submitting: st.IsSubmitting,
		Notices:    ss.drain(),
		Submitted:  last,
	}

	completed := make(map[int]bool, len(st.CompletedSteps))
	for _, i := range st.CompletedSteps {
		completed[i] = true
	}
	for i := schema.First(); i <= schema.Last(); i++ {
		step, _ := schema.Step(i)
		status := "pending"
		switch {
		case i == st.CurrentStep:
			status = "current"
		case completed[i]:
			status = "completed"
		}
		v.Steps = append(v.Steps, stepView{Index: i, Name: step.Name, Title: step.Title, Status: status})
	}

	step, _ := schema.Step(st.CurrentStep)
	v.StepTitle = step.Title
	required := make(map[string]bool, len(step.Required))
	for _, name := range step.Required {
		required[name] = true
	}
	for _, name := range step.Fields {
		f, _ := schema.Field(name)
		v.Fields = append(v.Fields, fieldView{
			Name:     name,
			Label:    f.Label,
			Kind:     f.Kind,
			Required: required[name],
			Value:    ss.wiz.Read(name).Interface(),
			Error:    errs[name],
			Options:  f.Options,
			Help:     f.Help,
		})
	}
	return v
}

func newFormView(id, title, description, source string, schema *wizard.Schema) formView {
	v := formView{ID: id, Title: title, Description: description, Source: source}
	for i := schema.First(); i <= schema.Last(); i++ {
		step, _ := schema.Step(i)
		v.Steps = append(v.Steps, stepView{Index: i, Name: step.Name, Title: step.Title})
	}
	return v
}

func newRecordView(r *records.Record) recordView {
	return recordView{
		ID:        r.ID,
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
		Values:    r.Values.Plain(),
	}
}

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"

	ierr "github.com/mark3labs/labwiz/internal/errors"
	"github.com/mark3labs/labwiz/internal/forms"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/wizard"
)

// Session IDs are xids: 20 lowercase base32 characters.
type sessionArgs struct {
	Session string `json:"session" validate:"required,alphanum,len=20"`
}

type formArgs struct {
	Form string `json:"form" validate:"required,max=64"`
}

type startArgs struct {
	Form     string `json:"form" validate:"required,max=64"`
	RecordID string `json:"record_id" validate:"omitempty,max=64"`
	Resume   bool   `json:"resume"`
}

type fieldSetArgs struct {
	Session string         `json:"session" validate:"required,alphanum,len=20"`
	Values  map[string]any `json:"values" validate:"required,min=1"`
}

type stepArgs struct {
	Session string `json:"session" validate:"required,alphanum,len=20"`
	Step    *int   `json:"step" validate:"omitempty,min=0"`
}

type gotoArgs struct {
	Session string `json:"session" validate:"required,alphanum,len=20"`
	Step    *int   `json:"step" validate:"required,min=0"`
}

type closeArgs struct {
	Session     string `json:"session" validate:"required,alphanum,len=20"`
	Destination string `json:"destination" validate:"omitempty,oneof=list back"`
}

// jsonTagName makes validation messages use argument names.
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// bind decodes the tool arguments into dst and validates them.
func (s *Server) bind(request mcp.CallToolRequest, dst any) error {
	args := request.GetArguments()
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return argumentError(err)
	}
	return nil
}

func argumentError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("'%s' is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("'%s' must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("'%s' failed rule '%s'", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) form(id string) (*forms.Form, error) {
	f, err := s.forms.Get(id)
	if err != nil {
		ids := make([]string, 0)
		for _, f := range s.forms.List() {
			ids = append(ids, f.Schema.ID)
		}
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(ids, ", "))
	}
	return f, nil
}

// handleFormList lists every registered form.
func (s *Server) handleFormList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.forms.List()
	out := make([]formView, 0, len(list))
	for _, f := range list {
		out = append(out, newFormView(f.Schema.ID, f.Schema.Title, f.Description, f.Source, f.Schema))
	}
	return jsonResult(out)
}

// handleWizardStart opens a session in create, edit or resume mode.
func (s *Server) handleWizardStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args startArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	form, err := s.form(args.Form)
	if err != nil {
		return errorResult(err)
	}

	var initial *wizard.InitialData
	switch {
	case args.Resume:
		if s.drafts == nil {
			return mcp.NewToolResultError("drafts are not available on this server"), nil
		}
		d, err := s.drafts.LoadDraft(ctx, form.Schema.ID, args.RecordID)
		if errors.Is(err, records.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no draft saved for %s", form.Schema.ID)), nil
		}
		if err != nil {
			return errorResult(err)
		}
		data := d.InitialData()
		initial = &data
	case args.RecordID != "":
		rec, err := s.records.GetRecord(ctx, form.Schema.ID, args.RecordID)
		if err != nil {
			return errorResult(err)
		}
		initial = &wizard.InitialData{RecordID: rec.ID, Values: rec.Values}
	}

	ss, err := s.openSession(form, initial)
	if err != nil {
		return errorResult(err)
	}
	logger.Debug("Opened %s session %s", form.Schema.ID, ss.id)
	return jsonResult(ss.view())
}

// handleWizardState reports the session without changing it.
func (s *Server) handleWizardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return jsonResult(ss.view())
}

// handleFieldSet writes field values. Every value is checked before any is
// applied, so a bad argument leaves the session untouched.
func (s *Server) handleFieldSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args fieldSetArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	schema := ss.wiz.Schema()
	names := make([]string, 0, len(args.Values))
	for name := range args.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	parsed := make(wizard.Values, len(names))
	var problems []string
	for _, name := range names {
		f, ok := schema.Field(name)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown field %q", name))
			continue
		}
		v, err := wizard.FromAny(f.Kind, args.Values[name])
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		parsed[name] = v
	}
	if len(problems) > 0 {
		return mcp.NewToolResultError(strings.Join(problems, "; ")), nil
	}

	for _, name := range names {
		ss.wiz.Update(name, parsed[name])
	}
	return jsonResult(ss.view())
}

// handleStepValidate validates a step without moving or touching errors.
func (s *Server) handleStepValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args stepArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	index := ss.wiz.CurrentStep()
	if args.Step != nil {
		index = *args.Step
	}
	if !ss.wiz.Schema().Has(index) {
		return mcp.NewToolResultError(fmt.Sprintf("step %d does not exist", index)), nil
	}
	return jsonResult(newValidationView(ss.wiz.ValidateStep(index)))
}

type moveResult struct {
	Moved      bool            `json:"moved"`
	Validation *validationView `json:"validation,omitempty"`
	State      stateView       `json:"state"`
}

// handleStepNext validates and advances.
func (s *Server) handleStepNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	t := ss.coord.Next()
	res := moveResult{Moved: t.Moved}
	if !t.Result.IsValid() {
		v := newValidationView(t.Result)
		res.Validation = &v
	}
	res.State = ss.view()
	return jsonResult(res)
}

// handleStepPrevious moves back one step.
func (s *Server) handleStepPrevious(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	moved := ss.wiz.GoPrevious()
	return jsonResult(moveResult{Moved: moved, State: ss.view()})
}

// handleStepGoto jumps to a step. An illegal jump is not an error; it
// reports moved=false and leaves the session where it was.
func (s *Server) handleStepGoto(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args gotoArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	moved := ss.wiz.GoToStep(*args.Step)
	return jsonResult(moveResult{Moved: moved, State: ss.view()})
}

type submitResult struct {
	Outcome    string          `json:"outcome"`
	RecordID   string          `json:"record_id,omitempty"`
	Error      string          `json:"error,omitempty"`
	Retryable  bool            `json:"retryable,omitempty"`
	Validation *validationView `json:"validation,omitempty"`
	State      stateView       `json:"state"`
}

// handleWizardSubmit persists the record. The session lock is not held
// across the store call so state tools stay responsive; the engine rejects
// a second submission while one is in flight.
func (s *Server) handleWizardSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	if _, last := ss.exitAndRecord(); last != "" {
		return mcp.NewToolResultError(fmt.Sprintf(
			"record %s was already submitted; call wizard-reset to add another or wizard-close to finish", last)), nil
	}

	recordID := ss.wiz.State().RecordID
	res := ss.coord.Submit(ctx)

	out := submitResult{Outcome: res.Outcome.String()}
	if res.Err != nil {
		out.Error = res.Err.Error()
		out.Retryable = ierr.IsTransient(res.Err)
	}
	if !res.Validation.IsValid() {
		v := newValidationView(res.Validation)
		out.Validation = &v
	}
	if res.Outcome == wizard.OutcomeSucceeded {
		out.RecordID = res.Receipt.ID
		ss.setLastRecord(res.Receipt.ID)
		if s.drafts != nil {
			if err := s.drafts.DeleteDraft(ctx, ss.form.Schema.ID, recordID); err != nil {
				logger.Warn("Removing submitted %s draft failed: %v", ss.form.Schema.ID, err)
			}
		}
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	out.State = ss.view()
	return jsonResult(out)
}

// handleWizardReset starts a new blank record in the same session.
func (s *Server) handleWizardReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.coord.ContinueAdding()
	ss.setLastRecord("")
	return jsonResult(ss.view())
}

// handleDraftSave stores the session as a draft.
func (s *Server) handleDraftSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	if s.drafts == nil {
		return mcp.NewToolResultError("drafts are not available on this server"), nil
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.coord.SaveDraft(ctx) {
		return jsonResult(map[string]any{"saved": false})
	}
	return jsonResult(map[string]any{"saved": true, "step": ss.wiz.CurrentStep()})
}

// handleRecordList lists submitted records of a form.
func (s *Server) handleRecordList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args formArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	form, err := s.form(args.Form)
	if err != nil {
		return errorResult(err)
	}
	recs, err := s.records.ListRecords(ctx, form.Schema.ID)
	if err != nil {
		return errorResult(fmt.Errorf("listing %s records: %w", form.Schema.ID, err))
	}
	out := make([]recordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, newRecordView(r))
	}
	return jsonResult(out)
}

// handleWizardClose hands the session to its navigator and forgets it.
func (s *Server) handleWizardClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args closeArgs
	if err := s.bind(request, &args); err != nil {
		return errorResult(err)
	}
	ss, err := s.session(args.Session)
	if err != nil {
		return errorResult(err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if args.Destination == exitList {
		ss.coord.ReturnToList()
	} else {
		ss.coord.Cancel()
	}
	s.closeSession(ss.id)
	dest, last := ss.exitAndRecord()
	logger.Debug("Closed session %s (%s)", ss.id, dest)
	return jsonResult(map[string]any{
		"closed":      ss.id,
		"destination": dest,
		"submitted":   last,
	})
}

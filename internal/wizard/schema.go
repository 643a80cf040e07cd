package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Check is a custom validator for one field. It may read any other field and
// returns a failure message and false when the field is invalid.
type Check func(r Reader) (string, bool)

// Field declares one input of a form.
type Field struct {
	Name        string   `validate:"required"`
	Label       string   `validate:"required"`
	Kind        Kind     `validate:"required,oneof=text list number bool files"`
	Multiline   bool
	Options     []string `validate:"omitempty,dive,required"`
	Placeholder string
	Help        string
}

// Step is one page of the wizard.
type Step struct {
	Name     string `validate:"required"`
	Title    string `validate:"required"`
	Fields   []string
	Required []string
	// Checks replace the presence rule for their field.
	Checks map[string]Check
}

// Checked returns the fields validated on this step: the required list
// followed by fields that only have a check, in declaration order.
func (s Step) Checked() []string {
	out := append([]string{}, s.Required...)
	seen := make(map[string]bool, len(out))
	for _, name := range out {
		seen[name] = true
	}
	for _, name := range s.Fields {
		if _, ok := s.Checks[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	for name := range s.Checks {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

// Schema is the full definition of one wizard: its fields and its ordered
// steps. The last step is the review step.
type Schema struct {
	ID     string  `validate:"required"`
	Title  string  `validate:"required"`
	Base   int     `validate:"oneof=0 1"`
	Fields []Field `validate:"required,dive"`
	Steps  []Step  `validate:"min=2,dive"`
	// StrictJump disables jumping one step past the current one.
	StrictJump bool
}

// Validate checks struct constraints and the structural rules every wizard
// relies on.
func (s *Schema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return validationError(s, err)
	}

	fields := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if fields[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.ID, f.Name)
		}
		fields[f.Name] = true
	}

	steps := make(map[string]bool, len(s.Steps))
	for i, st := range s.Steps {
		if steps[st.Name] {
			return fmt.Errorf("schema %s: duplicate step %q", s.ID, st.Name)
		}
		steps[st.Name] = true

		for _, name := range append(append([]string{}, st.Fields...), st.Required...) {
			if !fields[name] {
				return fmt.Errorf("schema %s: step %q references unknown field %q", s.ID, st.Name, name)
			}
		}
		for name := range st.Checks {
			if !fields[name] {
				return fmt.Errorf("schema %s: step %q checks unknown field %q", s.ID, st.Name, name)
			}
		}
		if i == len(s.Steps)-1 && (len(st.Required) > 0 || len(st.Checks) > 0) {
			return fmt.Errorf("schema %s: review step %q must not require fields", s.ID, st.Name)
		}
	}
	return nil
}

func validationError(input any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed rule '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid %T: %s", input, strings.Join(msgs, "; "))
}

// Len returns the number of steps.
func (s *Schema) Len() int { return len(s.Steps) }

// First returns the index of the first step.
func (s *Schema) First() int { return s.Base }

// Last returns the index of the review step.
func (s *Schema) Last() int { return s.Base + len(s.Steps) - 1 }

// Has reports whether index names a step.
func (s *Schema) Has(index int) bool {
	return index >= s.First() && index <= s.Last()
}

// Step returns the step at index.
func (s *Schema) Step(index int) (Step, bool) {
	if !s.Has(index) {
		return Step{}, false
	}
	return s.Steps[index-s.Base], true
}

// Field returns the declaration of a field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Label returns the display label of a field, falling back to its name.
func (s *Schema) Label(name string) string {
	if f, ok := s.Field(name); ok && f.Label != "" {
		return f.Label
	}
	return name
}

// Kinds returns the declared kind of every field.
func (s *Schema) Kinds() map[string]Kind {
	out := make(map[string]Kind, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Kind
	}
	return out
}

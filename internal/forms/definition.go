// Package forms loads the wizard definitions for each record type. Forms
// are YAML documents checked against a JSON Schema before they are compiled
// into wizard schemas.
package forms

import (
	"fmt"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/labwiz/internal/wizard"
)

// Definition is the YAML shape of a form.
type Definition struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description,omitempty"`
	Base        int        `yaml:"base,omitempty"`
	StrictJump  bool       `yaml:"strict_jump,omitempty"`
	Fields      []FieldDef `yaml:"fields"`
	Steps       []StepDef  `yaml:"steps"`
}

// FieldDef is the YAML shape of a field.
type FieldDef struct {
	Name        string      `yaml:"name"`
	Label       string      `yaml:"label"`
	Kind        wizard.Kind `yaml:"kind"`
	Multiline   bool        `yaml:"multiline,omitempty"`
	Options     []string    `yaml:"options,omitempty"`
	Placeholder string      `yaml:"placeholder,omitempty"`
	Help        string      `yaml:"help,omitempty"`
}

// StepDef is the YAML shape of a step.
type StepDef struct {
	Name     string      `yaml:"name"`
	Title    string      `yaml:"title"`
	Fields   []string    `yaml:"fields,omitempty"`
	Required []string    `yaml:"required,omitempty"`
	Checks   []CheckSpec `yaml:"checks,omitempty"`
}

// Parse lints and decodes a YAML form definition.
func Parse(data []byte) (*Definition, error) {
	problems, err := Lint(data)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, &LintError{Problems: problems}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decoding form: %w", err)
	}
	def.ID = slug.Make(def.ID)
	return &def, nil
}

// Build compiles the definition into a validated wizard schema.
func (d *Definition) Build() (*wizard.Schema, error) {
	s := &wizard.Schema{
		ID:         d.ID,
		Title:      d.Title,
		Base:       d.Base,
		StrictJump: d.StrictJump,
	}
	for _, f := range d.Fields {
		s.Fields = append(s.Fields, wizard.Field{
			Name:        f.Name,
			Label:       f.Label,
			Kind:        f.Kind,
			Multiline:   f.Multiline,
			Options:     f.Options,
			Placeholder: f.Placeholder,
			Help:        f.Help,
		})
	}

	for _, sd := range d.Steps {
		step := wizard.Step{
			Name:     sd.Name,
			Title:    sd.Title,
			Fields:   sd.Fields,
			Required: sd.Required,
		}
		for _, spec := range sd.Checks {
			check, err := compileCheck(s, spec)
			if err != nil {
				return nil, fmt.Errorf("form %s step %s: %w", d.ID, sd.Name, err)
			}
			if step.Checks == nil {
				step.Checks = make(map[string]wizard.Check)
			}
			if _, dup := step.Checks[spec.Field]; dup {
				return nil, fmt.Errorf("form %s step %s: more than one check on %s", d.ID, sd.Name, spec.Field)
			}
			step.Checks[spec.Field] = check
		}
		s.Steps = append(s.Steps, step)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

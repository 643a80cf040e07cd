package forms

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/labwiz/internal/wizard"
)

// DateLayout is the only date format accepted by date rules.
const DateLayout = "2006-01-02"

// CheckSpec declares a named rule applied to one field.
type CheckSpec struct {
	Field    string `yaml:"field"`
	Rule     string `yaml:"rule"`
	Other    string `yaml:"other,omitempty"`
	Param    string `yaml:"param,omitempty"`
	Message  string `yaml:"message,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
}

// Rule compiles a CheckSpec into a check for schema.
type Rule func(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error)

var (
	rulesMu sync.RWMutex
	rules   = map[string]Rule{
		"less_than":   lessThan,
		"not_before":  notBefore,
		"date":        date,
		"min_items":   minItems,
		"one_of":      oneOf,
		"pattern":     pattern,
		"required_if": requiredIf,
	}
)

// RegisterRule adds or replaces a named rule.
func RegisterRule(name string, r Rule) {
	rulesMu.Lock()
	defer rulesMu.Unlock()
	rules[name] = r
}

// Rules returns the registered rule names in sorted order.
func Rules() []string {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func compileCheck(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	rulesMu.RLock()
	r, ok := rules[spec.Rule]
	rulesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", spec.Rule)
	}
	if _, ok := schema.Field(spec.Field); !ok {
		return nil, fmt.Errorf("rule %s: unknown field %q", spec.Rule, spec.Field)
	}
	if spec.Other != "" {
		if _, ok := schema.Field(spec.Other); !ok {
			return nil, fmt.Errorf("rule %s: unknown field %q", spec.Rule, spec.Other)
		}
	}
	return r(schema, spec)
}

// present wraps a rule body with the presence handling every rule shares:
// an empty value fails unless the check is optional.
func present(schema *wizard.Schema, spec CheckSpec, body func(v wizard.Value, r wizard.Reader) (string, bool)) wizard.Check {
	label := schema.Label(spec.Field)
	return func(r wizard.Reader) (string, bool) {
		v := r.Read(spec.Field)
		if v.IsEmpty() {
			if spec.Optional {
				return "", true
			}
			return label + " is required", false
		}
		msg, ok := body(v, r)
		if !ok && spec.Message != "" {
			msg = spec.Message
		}
		return msg, ok
	}
}

func requireOther(spec CheckSpec) error {
	if spec.Other == "" {
		return fmt.Errorf("rule %s on %s needs other", spec.Rule, spec.Field)
	}
	return nil
}

func lessThan(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	if err := requireOther(spec); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("%s must be less than %s", schema.Label(spec.Field), schema.Label(spec.Other))
	return present(schema, spec, func(v wizard.Value, r wizard.Reader) (string, bool) {
		o := r.Read(spec.Other)
		if v.Number == nil || o.Number == nil {
			return "", true
		}
		if *v.Number >= *o.Number {
			return msg, false
		}
		return "", true
	}), nil
}

func parseDate(v wizard.Value) (time.Time, bool) {
	t, err := time.Parse(DateLayout, v.String())
	return t, err == nil
}

func date(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	msg := fmt.Sprintf("%s must be a date (YYYY-MM-DD)", schema.Label(spec.Field))
	return present(schema, spec, func(v wizard.Value, _ wizard.Reader) (string, bool) {
		if _, ok := parseDate(v); !ok {
			return msg, false
		}
		return "", true
	}), nil
}

func notBefore(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	if err := requireOther(spec); err != nil {
		return nil, err
	}
	badDate := fmt.Sprintf("%s must be a date (YYYY-MM-DD)", schema.Label(spec.Field))
	before := fmt.Sprintf("%s cannot be before %s", schema.Label(spec.Field), schema.Label(spec.Other))
	return present(schema, spec, func(v wizard.Value, r wizard.Reader) (string, bool) {
		d, ok := parseDate(v)
		if !ok {
			return badDate, false
		}
		o, ok := parseDate(r.Read(spec.Other))
		if ok && d.Before(o) {
			return before, false
		}
		return "", true
	}), nil
}

func minItems(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	n, err := strconv.Atoi(spec.Param)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("rule min_items on %s: param must be a positive integer", spec.Field)
	}
	msg := fmt.Sprintf("%s needs at least %d entries", schema.Label(spec.Field), n)
	return present(schema, spec, func(v wizard.Value, _ wizard.Reader) (string, bool) {
		count := len(v.List) + len(v.Files)
		if count < n {
			return msg, false
		}
		return "", true
	}), nil
}

func oneOf(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	f, _ := schema.Field(spec.Field)
	if len(f.Options) == 0 {
		return nil, fmt.Errorf("rule one_of on %s: field has no options", spec.Field)
	}
	msg := fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Options, ", "))
	return present(schema, spec, func(v wizard.Value, _ wizard.Reader) (string, bool) {
		if !slices.Contains(f.Options, v.String()) {
			return msg, false
		}
		return "", true
	}), nil
}

func pattern(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	re, err := regexp.Compile(spec.Param)
	if err != nil {
		return nil, fmt.Errorf("rule pattern on %s: %w", spec.Field, err)
	}
	msg := fmt.Sprintf("%s has an invalid format", schema.Label(spec.Field))
	return present(schema, spec, func(v wizard.Value, _ wizard.Reader) (string, bool) {
		if !re.MatchString(v.String()) {
			return msg, false
		}
		return "", true
	}), nil
}

// requiredIf requires the field only while other is set.
func requiredIf(schema *wizard.Schema, spec CheckSpec) (wizard.Check, error) {
	if err := requireOther(spec); err != nil {
		return nil, err
	}
	msg := spec.Message
	if msg == "" {
		msg = fmt.Sprintf("%s is required when %s is set", schema.Label(spec.Field), schema.Label(spec.Other))
	}
	return func(r wizard.Reader) (string, bool) {
		if r.Read(spec.Other).IsEmpty() || !r.Read(spec.Field).IsEmpty() {
			return "", true
		}
		return msg, false
	}, nil
}

package wizard

import (
	"fmt"
	"sort"

	ierr "github.com/mark3labs/labwiz/internal/errors"
	"github.com/mark3labs/labwiz/internal/logger"
)

// ValidationResult is the outcome of validating one step. It is recomputed
// on every call and never cached.
type ValidationResult struct {
	Step     int
	Failures map[string]string
}

// IsValid reports whether no field failed.
func (r ValidationResult) IsValid() bool {
	return len(r.Failures) == 0
}

// Fields returns the failing field names in sorted order.
func (r ValidationResult) Fields() []string {
	names := make([]string, 0, len(r.Failures))
	for name := range r.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Message returns a single line listing every failure.
func (r ValidationResult) Message() string {
	if r.IsValid() {
		return ""
	}
	fields := r.Fields()
	if len(fields) == 1 {
		return r.Failures[fields[0]]
	}
	return fmt.Sprintf("%s (and %d more)", r.Failures[fields[0]], len(fields)-1)
}

// ValidateStep checks only the rules declared on one step. Fields owned by
// other steps are ignored. An unknown index yields a valid result.
func ValidateStep(schema *Schema, index int, r Reader) ValidationResult {
	res := ValidationResult{Step: index, Failures: map[string]string{}}
	step, ok := schema.Step(index)
	if !ok {
		return res
	}

	for _, name := range step.Checked() {
		if check, ok := step.Checks[name]; ok {
			if msg, ok := runCheck(check, r); !ok {
				if msg == "" {
					msg = fmt.Sprintf("%s is invalid", schema.Label(name))
				}
				res.Failures[name] = msg
			}
			continue
		}
		if r.Read(name).IsEmpty() {
			res.Failures[name] = fmt.Sprintf("%s is required", schema.Label(name))
		}
	}
	return res
}

// runCheck treats a panicking check as a failed one.
func runCheck(check Check, r Reader) (msg string, ok bool) {
	err := ierr.Recover(func() error {
		msg, ok = check(r)
		return nil
	})
	if err != nil {
		logger.Error("Field check panicked: %v", err)
		return "", false
	}
	return msg, ok
}

package hooks

import (
	"slices"

	"github.com/mark3labs/labwiz/internal/wizard"
)

// Config mirrors .labwiz.hooks.yml.
type Config struct {
	Version int   `yaml:"version"`
	Hooks   Hooks `yaml:"hooks"`
}

// Hooks groups hook lists by trigger.
type Hooks struct {
	// PostSubmit runs after a record was saved, in order.
	PostSubmit []*Hook `yaml:"post_submit"`
}

// Hook is one shell command.
type Hook struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
	// PipeOutput shows the command's output to the user.
	PipeOutput bool `yaml:"pipe_output"`
	// Forms limits the hook to these form IDs. Empty means every form.
	Forms []string `yaml:"forms"`
}

// Applies reports whether the hook runs for form.
func (h *Hook) Applies(form string) bool {
	return len(h.Forms) == 0 || slices.Contains(h.Forms, form)
}

// Event describes a saved record.
type Event struct {
	Form     string
	RecordID string
	Mode     wizard.Mode
	Values   wizard.Values
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30

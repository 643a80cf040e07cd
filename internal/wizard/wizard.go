// Package wizard implements the multi-step form engine shared by every
// record wizard: field storage, step-scoped validation, navigation rules,
// completion tracking and submission.
//
// A Wizard is owned by one session. Its methods are safe to call from
// several goroutines because front ends run submissions in the background,
// but there is no notion of concurrent editors.
package wizard

import (
	"fmt"
	"sync"
)

// Mode distinguishes creating a new record from editing an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// State is a read-only view of the session.
type State struct {
	CurrentStep    int
	CompletedSteps []int
	IsSubmitting   bool
	Mode           Mode
	RecordID       string
}

// InitialData pre-populates a wizard at mount time. A non-empty RecordID
// puts the wizard in edit mode. A nil Completed means "use the mode's
// default": nothing in create mode, every editable step in edit mode.
type InitialData struct {
	RecordID    string
	Values      Values
	Completed   []int
	CurrentStep *int
}

// Transition describes the effect of a GoNext call.
type Transition struct {
	From   int
	To     int
	Moved  bool
	Result ValidationResult
}

// Wizard is the step state machine for one session.
type Wizard struct {
	mu sync.Mutex

	schema     *Schema
	fields     *FieldStore
	completion *CompletionTracker
	current    int
	submitting bool
	mode       Mode
	recordID   string
}

// Option configures a Wizard at construction.
type Option func(*Wizard)

// WithInitialData mounts the wizard with pre-populated data.
func WithInitialData(d InitialData) Option {
	return func(w *Wizard) { w.load(d) }
}

// New creates a wizard positioned on the first step of schema.
func New(schema *Schema, opts ...Option) (*Wizard, error) {
	if schema == nil {
		return nil, fmt.Errorf("wizard: nil schema")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	w := &Wizard{
		schema:     schema,
		fields:     NewFieldStore(schema.Kinds(), nil),
		completion: NewCompletionTracker(),
		current:    schema.First(),
		mode:       ModeCreate,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Wizard) load(d InitialData) {
	w.fields.Reset(d.Values)
	w.completion.Reset()
	w.current = w.schema.First()
	w.recordID = d.RecordID
	w.mode = ModeCreate
	if d.RecordID != "" {
		w.mode = ModeEdit
	}

	completed := d.Completed
	if completed == nil && w.mode == ModeEdit {
		for i := w.schema.First(); i < w.schema.Last(); i++ {
			completed = append(completed, i)
		}
	}
	for _, i := range completed {
		if w.schema.Has(i) && i != w.schema.Last() {
			w.completion.MarkCompleted(i)
		}
	}

	if d.CurrentStep != nil && w.resumable(*d.CurrentStep) {
		w.current = *d.CurrentStep
	}
}

// resumable reports whether a session may be mounted on index: any step
// the first step could jump to, or one whose predecessors are all completed.
func (w *Wizard) resumable(index int) bool {
	if w.canGoTo(index) {
		return true
	}
	if !w.schema.Has(index) {
		return false
	}
	for i := w.schema.First(); i < index; i++ {
		if !w.completion.IsCompleted(i) {
			return false
		}
	}
	return true
}

// Schema returns the definition the wizard was built from.
func (w *Wizard) Schema() *Schema { return w.schema }

// State returns a snapshot of the session state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		CurrentStep:    w.current,
		CompletedSteps: w.completion.Completed(),
		IsSubmitting:   w.submitting,
		Mode:           w.mode,
		RecordID:       w.recordID,
	}
}

// CurrentStep returns the active step index.
func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// IsCompleted reports whether a step has passed validation.
func (w *Wizard) IsCompleted(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completion.IsCompleted(index)
}

// IsTerminal reports whether the wizard is on the review step.
func (w *Wizard) IsTerminal() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current == w.schema.Last()
}

// Update writes a field value and clears its error.
func (w *Wizard) Update(name string, v Value) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fields.Update(name, v)
}

// Read returns a field value or its empty default.
func (w *Wizard) Read(name string) Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields.Read(name)
}

// Values returns a deep copy of every written field.
func (w *Wizard) Values() Values {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields.Snapshot()
}

// Errors returns the field failures currently on display.
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields.Errors()
}

// FieldError returns the failure currently shown for a field.
func (w *Wizard) FieldError(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields.Error(name)
}

// ValidateStep validates one step without changing any state.
func (w *Wizard) ValidateStep(index int) ValidationResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ValidateStep(w.schema, index, w.fields)
}

// GoNext validates the current step and advances when it passes. On the
// review step it never moves; use a Coordinator to submit.
func (w *Wizard) GoNext() Transition {
	w.mu.Lock()
	defer w.mu.Unlock()

	t := Transition{From: w.current, To: w.current}
	t.Result = w.validateCurrent()
	if !t.Result.IsValid() || w.current == w.schema.Last() {
		return t
	}
	w.completion.MarkCompleted(w.current)
	w.current++
	t.To = w.current
	t.Moved = true
	return t
}

// validateCurrent validates the active step and mirrors the result into the
// field store's error display.
func (w *Wizard) validateCurrent() ValidationResult {
	res := ValidateStep(w.schema, w.current, w.fields)
	if step, ok := w.schema.Step(w.current); ok {
		for _, name := range step.Checked() {
			w.fields.ClearError(name)
		}
	}
	for name, msg := range res.Failures {
		w.fields.SetError(name, msg)
	}
	return res
}

// GoPrevious moves back one step without validating. It returns false on
// the first step.
func (w *Wizard) GoPrevious() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == w.schema.First() {
		return false
	}
	w.current--
	return true
}

// CanGoTo reports whether GoToStep(index) would succeed.
func (w *Wizard) CanGoTo(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canGoTo(index)
}

func (w *Wizard) canGoTo(index int) bool {
	if !w.schema.Has(index) {
		return false
	}
	if index <= w.current || w.completion.IsCompleted(index) {
		return true
	}
	return !w.schema.StrictJump && index == w.current+1
}

// GoToStep jumps to index when allowed. Illegal jumps are ignored and
// report false.
func (w *Wizard) GoToStep(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.canGoTo(index) {
		return false
	}
	w.current = index
	return true
}

// Reset returns the wizard to a blank create session on the first step.
func (w *Wizard) Reset() {
	w.ResetTo(InitialData{})
}

// ResetTo remounts the wizard with new initial data.
func (w *Wizard) ResetTo(d InitialData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.load(d)
}

package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	ierr "github.com/mark3labs/labwiz/internal/errors"
	"github.com/mark3labs/labwiz/internal/logger"
)

// ErrNotAtReview is returned when Submit is called away from the review step.
var ErrNotAtReview = errors.New("submit is only available on the review step")

// Receipt is what the persistence layer returns for a saved record.
type Receipt struct {
	ID string
}

// Persister creates and updates records. It is the only collaborator the
// coordinator waits on.
type Persister interface {
	CreateRecord(ctx context.Context, form string, values Values) (Receipt, error)
	UpdateRecord(ctx context.Context, form, id string, values Values) (Receipt, error)
}

// NoticeKind classifies a user notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// Navigator leaves the wizard.
type Navigator interface {
	GoToList()
	GoBack()
}

// Draft is an unsubmitted snapshot of a session.
type Draft struct {
	Form        string    `json:"form"`
	RecordID    string    `json:"record_id,omitempty"`
	Values      Values    `json:"values"`
	CurrentStep int       `json:"current_step"`
	Completed   []int     `json:"completed"`
	SavedAt     time.Time `json:"saved_at"`
}

// InitialData converts the draft back into mount data for a resumed session.
func (d Draft) InitialData() InitialData {
	step := d.CurrentStep
	completed := append([]int{}, d.Completed...)
	return InitialData{
		RecordID:    d.RecordID,
		Values:      d.Values,
		Completed:   completed,
		CurrentStep: &step,
	}
}

// DraftSaver stores drafts. Failures are logged and never reach the user.
type DraftSaver interface {
	SaveDraft(ctx context.Context, d Draft) error
}

// Outcome classifies a submission attempt.
type Outcome int

const (
	// OutcomeSucceeded means the record was persisted.
	OutcomeSucceeded Outcome = iota
	// OutcomeBlocked means validation failed or the wizard was not on the
	// review step. Nothing was persisted.
	OutcomeBlocked
	// OutcomeBusy means another submission was still in flight.
	OutcomeBusy
	// OutcomeFailed means the persister returned an error. State is unchanged
	// and the user may retry.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeBusy:
		return "busy"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SubmitResult reports what Submit did.
type SubmitResult struct {
	Outcome    Outcome
	Receipt    Receipt
	Validation ValidationResult
	Err        error
}

// Coordinator drives submission and the actions around it for one wizard.
type Coordinator struct {
	wizard        *Wizard
	persister     Persister
	notifier      Notifier
	navigator     Navigator
	drafts        DraftSaver
	notifyInvalid bool
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

func WithNotifier(n Notifier) CoordinatorOption {
	return func(c *Coordinator) { c.notifier = n }
}

func WithNavigator(n Navigator) CoordinatorOption {
	return func(c *Coordinator) { c.navigator = n }
}

func WithDraftSaver(d DraftSaver) CoordinatorOption {
	return func(c *Coordinator) { c.drafts = d }
}

// WithInvalidNotices also sends validation failures to the notifier, in
// addition to the inline field errors.
func WithInvalidNotices(enabled bool) CoordinatorOption {
	return func(c *Coordinator) { c.notifyInvalid = enabled }
}

// NewCoordinator wires a wizard to its collaborators. Missing optional
// collaborators become no-ops.
func NewCoordinator(w *Wizard, p Persister, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		wizard:    w,
		persister: p,
		notifier:  LogNotifier{},
		navigator: nopNavigator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wizard returns the coordinated wizard.
func (c *Coordinator) Wizard() *Wizard { return c.wizard }

// Next advances the wizard, notifying on failure when configured.
func (c *Coordinator) Next() Transition {
	t := c.wizard.GoNext()
	if !t.Result.IsValid() && c.notifyInvalid {
		c.notifier.Notify(NoticeError, t.Result.Message())
	}
	return t
}

// Submit re-validates the review step and persists the record. At most one
// submission runs at a time; a second call while one is in flight returns
// OutcomeBusy without touching the persister.
func (c *Coordinator) Submit(ctx context.Context) SubmitResult {
	w := c.wizard
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return SubmitResult{Outcome: OutcomeBusy}
	}
	if w.current != w.schema.Last() {
		w.mu.Unlock()
		return SubmitResult{Outcome: OutcomeBlocked, Err: ErrNotAtReview}
	}
	res := w.validateCurrent()
	if !res.IsValid() {
		w.mu.Unlock()
		if c.notifyInvalid {
			c.notifier.Notify(NoticeError, res.Message())
		}
		return SubmitResult{Outcome: OutcomeBlocked, Validation: res}
	}
	w.submitting = true
	form, mode, id := w.schema.ID, w.mode, w.recordID
	values := w.fields.Snapshot()
	w.mu.Unlock()

	var receipt Receipt
	err := ierr.Recover(func() error {
		var err error
		if mode == ModeEdit {
			receipt, err = c.persister.UpdateRecord(ctx, form, id, values)
		} else {
			receipt, err = c.persister.CreateRecord(ctx, form, values)
		}
		return err
	})

	w.mu.Lock()
	w.submitting = false
	w.mu.Unlock()

	if err != nil {
		logger.Error("Submitting %s record failed: %v", form, err)
		msg := fmt.Sprintf("Could not save %s: %v.", w.schema.Title, err)
		if ierr.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
			msg += " Please try again."
		}
		c.notifier.Notify(NoticeError, msg)
		return SubmitResult{Outcome: OutcomeFailed, Validation: res, Err: err}
	}

	verb := "created"
	if mode == ModeEdit {
		verb = "updated"
	}
	logger.Info("Submitted %s record %s (%s)", form, receipt.ID, verb)
	c.notifier.Notify(NoticeSuccess, fmt.Sprintf("%s %s", w.schema.Title, verb))
	return SubmitResult{Outcome: OutcomeSucceeded, Receipt: receipt, Validation: res}
}

// ContinueAdding resets everything for a new blank record.
func (c *Coordinator) ContinueAdding() {
	c.wizard.Reset()
}

// ReturnToList hands control to the navigator after a submission.
func (c *Coordinator) ReturnToList() {
	c.navigator.GoToList()
}

// Cancel leaves the wizard without saving.
func (c *Coordinator) Cancel() {
	c.navigator.GoBack()
}

// Draft captures the current session as a draft.
func (c *Coordinator) Draft() Draft {
	w := c.wizard
	w.mu.Lock()
	defer w.mu.Unlock()
	return Draft{
		Form:        w.schema.ID,
		RecordID:    w.recordID,
		Values:      w.fields.Snapshot(),
		CurrentStep: w.current,
		Completed:   w.completion.Completed(),
		SavedAt:     time.Now(),
	}
}

// SaveDraft hands a snapshot to the draft saver and reports whether it was
// stored. Errors are logged only.
func (c *Coordinator) SaveDraft(ctx context.Context) bool {
	if c.drafts == nil {
		return false
	}
	d := c.Draft()
	if err := c.drafts.SaveDraft(ctx, d); err != nil {
		logger.Warn("Saving %s draft failed: %v", d.Form, err)
		return false
	}
	logger.Debug("Saved %s draft at step %d", d.Form, d.CurrentStep)
	return true
}

// LogNotifier writes notifications to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(kind NoticeKind, message string) {
	if kind == NoticeError {
		logger.Warn("%s", message)
		return
	}
	logger.Info("%s", message)
}

type nopNavigator struct{}

func (nopNavigator) GoToList() {}
func (nopNavigator) GoBack()   {}

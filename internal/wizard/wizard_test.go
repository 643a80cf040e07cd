package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contactSchema is a three step wizard: name, email, review.
func contactSchema() *Schema {
	return &Schema{
		ID:    "contact",
		Title: "Contact",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText},
			{Name: "email", Label: "Email", Kind: KindText},
		},
		Steps: []Step{
			{Name: "basics", Title: "Basics", Fields: []string{"name"}, Required: []string{"name"}},
			{Name: "contact", Title: "Contact", Fields: []string{"email"}, Required: []string{"email"}},
			{Name: "review", Title: "Review"},
		},
	}
}

// openSchema has five steps and no required fields.
func openSchema() *Schema {
	s := &Schema{
		ID:     "open",
		Title:  "Open",
		Fields: []Field{{Name: "note", Label: "Note", Kind: KindText}},
	}
	for _, name := range []string{"a", "b", "c", "d", "review"} {
		s.Steps = append(s.Steps, Step{Name: name, Title: name})
	}
	return s
}

func mustNew(t *testing.T, s *Schema, opts ...Option) *Wizard {
	t.Helper()
	w, err := New(s, opts...)
	require.NoError(t, err)
	return w
}

func TestNew_InitialState(t *testing.T) {
	w := mustNew(t, contactSchema())
	st := w.State()
	assert.Equal(t, 0, st.CurrentStep)
	assert.Empty(t, st.CompletedSteps)
	assert.False(t, st.IsSubmitting)
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Equal(t, "", w.Read("name").Text)
}

func TestNew_RejectsInvalidSchema(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	s := contactSchema()
	s.Steps[2].Required = []string{"name"}
	_, err = New(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review step")
}

func TestGoNext_FailedIsIdempotent(t *testing.T) {
	w := mustNew(t, contactSchema())
	before := w.State()

	for i := 0; i < 5; i++ {
		tr := w.GoNext()
		assert.False(t, tr.Moved)
		assert.False(t, tr.Result.IsValid())
		assert.Equal(t, []string{"name"}, tr.Result.Fields())
		assert.Equal(t, "Name is required", w.FieldError("name"))

		after := w.State()
		assert.Equal(t, before.CurrentStep, after.CurrentStep)
		assert.Equal(t, before.CompletedSteps, after.CompletedSteps)
	}
}

func TestGoNext_MonotonicCompletion(t *testing.T) {
	w := mustNew(t, contactSchema())
	w.Update("name", TextValue("Acme"))
	w.Update("email", TextValue("a@b.com"))

	require.True(t, w.GoNext().Moved)
	require.True(t, w.GoNext().Moved)

	st := w.State()
	assert.Equal(t, 2, st.CurrentStep)
	assert.Subset(t, st.CompletedSteps, []int{0, 1})
	assert.True(t, w.IsTerminal())

	// Forward from the review step is never a transition.
	tr := w.GoNext()
	assert.False(t, tr.Moved)
	assert.True(t, tr.Result.IsValid())
	assert.Equal(t, 2, w.CurrentStep())
	assert.False(t, w.IsCompleted(2))
}

func TestGoPrevious_IgnoresValidity(t *testing.T) {
	w := mustNew(t, contactSchema())
	w.Update("name", TextValue("Acme"))
	w.Update("email", TextValue("a@b.com"))
	w.GoNext()
	w.GoNext()

	// Invalidate everything, then walk back.
	w.Update("name", TextValue(""))
	w.Update("email", TextValue(""))
	for k := 2; k > 0; k-- {
		require.Equal(t, k, w.CurrentStep())
		assert.True(t, w.GoPrevious())
		assert.Equal(t, k-1, w.CurrentStep())
	}
	assert.False(t, w.GoPrevious())
	assert.Equal(t, 0, w.CurrentStep())
}

func TestGoToStep_Restriction(t *testing.T) {
	// Advance to step 2, then jump back to 0: completed = {0, 1}.
	setup := func(t *testing.T) *Wizard {
		w := mustNew(t, openSchema())
		w.GoNext()
		w.GoNext()
		require.True(t, w.GoToStep(0))
		return w
	}

	tests := []struct {
		target int
		legal  bool
	}{
		{-1, false},
		{0, true},
		{1, true},
		{2, false},
		{3, false},
		{4, false},
		{5, false},
	}
	for _, tt := range tests {
		w := setup(t)
		assert.Equal(t, tt.legal, w.CanGoTo(tt.target), "CanGoTo(%d)", tt.target)
		assert.Equal(t, tt.legal, w.GoToStep(tt.target), "GoToStep(%d)", tt.target)
		if tt.legal {
			assert.Equal(t, tt.target, w.CurrentStep())
		} else {
			assert.Equal(t, 0, w.CurrentStep())
		}
	}
}

func TestGoToStep_LookAhead(t *testing.T) {
	w := mustNew(t, contactSchema())
	assert.True(t, w.GoToStep(1), "one step ahead is allowed by default")
	assert.Equal(t, 1, w.CurrentStep())
	assert.False(t, w.IsCompleted(0), "jumping does not complete a step")

	s := contactSchema()
	s.StrictJump = true
	strict := mustNew(t, s)
	assert.False(t, strict.GoToStep(1))
	assert.Equal(t, 0, strict.CurrentStep())
}

func TestBaseOne(t *testing.T) {
	s := contactSchema()
	s.Base = 1
	w := mustNew(t, s)

	assert.Equal(t, 1, w.CurrentStep())
	assert.False(t, w.GoToStep(0))
	assert.False(t, w.GoPrevious())

	w.Update("name", TextValue("Acme"))
	tr := w.GoNext()
	assert.True(t, tr.Moved)
	assert.Equal(t, 1, tr.From)
	assert.Equal(t, 2, tr.To)
	assert.Equal(t, []int{1}, w.State().CompletedSteps)
	assert.Equal(t, 3, s.Last())
}

func TestValidationScoping(t *testing.T) {
	s := &Schema{
		ID:    "patent",
		Title: "Patent",
		Fields: []Field{
			{Name: "patentNumber", Label: "Patent number", Kind: KindText},
			{Name: "inventors", Label: "Inventors", Kind: KindList},
		},
		Steps: []Step{
			{Name: "basics", Title: "Basics", Fields: []string{"patentNumber"}, Required: []string{"patentNumber"}},
			{Name: "people", Title: "People", Fields: []string{"inventors"}, Required: []string{"inventors"}},
			{Name: "review", Title: "Review"},
		},
	}
	w := mustNew(t, s)
	w.Update("inventors", ListValue("Ada Lovelace"))

	step0 := w.ValidateStep(0)
	assert.False(t, step0.IsValid())
	assert.Contains(t, step0.Failures, "patentNumber")

	step1 := w.ValidateStep(1)
	assert.True(t, step1.IsValid())
	assert.NotContains(t, step1.Failures, "patentNumber")

	assert.True(t, w.ValidateStep(2).IsValid(), "review step has no rules")
	assert.True(t, w.ValidateStep(42).IsValid(), "unknown step is trivially valid")
}

func TestReset_ClearsEverything(t *testing.T) {
	s := &Schema{
		ID:    "reagent",
		Title: "Reagent",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText},
			{Name: "tags", Label: "Tags", Kind: KindList},
			{Name: "stock", Label: "Stock", Kind: KindNumber},
			{Name: "hazardous", Label: "Hazardous", Kind: KindBool},
			{Name: "sds", Label: "Safety sheet", Kind: KindFiles},
		},
		Steps: []Step{
			{Name: "all", Title: "All", Fields: []string{"name", "tags", "stock", "hazardous", "sds"}, Required: []string{"name"}},
			{Name: "review", Title: "Review"},
		},
	}
	w := mustNew(t, s)
	w.Update("name", TextValue("Ethanol"))
	w.Update("tags", ListValue("solvent"))
	w.Update("stock", NumberValue(3))
	w.Update("hazardous", BoolValue(true))
	w.Update("sds", FilesValue(File{Name: "sds.pdf"}))
	require.True(t, w.GoNext().Moved)

	w.Reset()

	st := w.State()
	assert.Empty(t, st.CompletedSteps)
	assert.Equal(t, s.First(), st.CurrentStep)
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Equal(t, "", w.Read("name").Text)
	assert.Equal(t, []string{}, w.Read("tags").List)
	assert.Nil(t, w.Read("stock").Number)
	assert.False(t, w.Read("hazardous").Bool)
	assert.Equal(t, []File{}, w.Read("sds").Files)
	assert.Empty(t, w.Values())
	assert.Empty(t, w.Errors())
}

func TestUpdate_ClearsFieldError(t *testing.T) {
	w := mustNew(t, contactSchema())
	w.GoNext()
	require.Equal(t, "Name is required", w.FieldError("name"))

	w.Update("name", TextValue("A"))
	assert.Equal(t, "", w.FieldError("name"), "edits clear errors without re-validating")

	w.Update("name", TextValue(""))
	assert.Equal(t, "", w.FieldError("name"))
}

func TestEditMode_PrecompletesEditableSteps(t *testing.T) {
	w := mustNew(t, contactSchema(), WithInitialData(InitialData{
		RecordID: "rec-1",
		Values:   Values{"name": TextValue("Acme"), "email": TextValue("a@b.com")},
	}))

	st := w.State()
	assert.Equal(t, ModeEdit, st.Mode)
	assert.Equal(t, "rec-1", st.RecordID)
	assert.Equal(t, []int{0, 1}, st.CompletedSteps)
	assert.Equal(t, 0, st.CurrentStep)

	assert.True(t, w.GoToStep(1))
	assert.True(t, w.GoToStep(2))
	assert.True(t, w.GoToStep(0))
}

func TestInitialData_ExplicitCompletion(t *testing.T) {
	step := 1
	w := mustNew(t, openSchema(), WithInitialData(InitialData{
		Values:      Values{"note": TextValue("hi")},
		Completed:   []int{0, 4, 9},
		CurrentStep: &step,
	}))

	st := w.State()
	assert.Equal(t, ModeCreate, st.Mode)
	assert.Equal(t, []int{0}, st.CompletedSteps, "review and unknown indices are dropped")
	assert.Equal(t, 1, st.CurrentStep)

	far := 3
	w.ResetTo(InitialData{CurrentStep: &far})
	assert.Equal(t, 0, w.CurrentStep(), "resume position must be reachable")
}

func TestInitialData_ResumeOnReview(t *testing.T) {
	review := 4
	w := mustNew(t, openSchema(), WithInitialData(InitialData{
		Completed:   []int{0, 1, 2, 3},
		CurrentStep: &review,
	}))
	assert.True(t, w.IsTerminal())

	w.ResetTo(InitialData{Completed: []int{1, 2, 3}, CurrentStep: &review})
	assert.Equal(t, 0, w.CurrentStep(), "an earlier step is still open")
}

func TestEndToEnd(t *testing.T) {
	p := &fakePersister{}
	w := mustNew(t, contactSchema())
	c := NewCoordinator(w, p)

	w.Update("name", TextValue("Acme"))
	tr := c.Next()
	assert.True(t, tr.Moved)
	assert.Equal(t, 1, w.CurrentStep())
	assert.Equal(t, []int{0}, w.State().CompletedSteps)

	tr = c.Next()
	assert.False(t, tr.Moved)
	assert.Equal(t, 1, w.CurrentStep())
	assert.False(t, tr.Result.IsValid())
	assert.Contains(t, tr.Result.Failures, "email")

	w.Update("email", TextValue("a@b.com"))
	tr = c.Next()
	assert.True(t, tr.Moved)
	assert.Equal(t, 2, w.CurrentStep())
	assert.Equal(t, []int{0, 1}, w.State().CompletedSteps)

	res := c.Submit(t.Context())
	require.Equal(t, OutcomeSucceeded, res.Outcome, "err: %v", res.Err)
	require.Len(t, p.created, 1)
	want := Values{"name": TextValue("Acme"), "email": TextValue("a@b.com")}
	if diff := cmp.Diff(want, p.created[0]); diff != "" {
		t.Errorf("persisted values mismatch (-want +got):\n%s", diff)
	}
}

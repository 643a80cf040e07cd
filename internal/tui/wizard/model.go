// Package wizard is the terminal front end for a record wizard. It renders
// one step at a time inside a modal, commits every edit to the engine and
// runs submissions in the background.
package wizard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/labwiz/internal/hooks"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/template"
	"github.com/mark3labs/labwiz/internal/tui/theme"
	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// Exit reports how the user left the wizard.
type Exit int

const (
	ExitNone Exit = iota
	ExitList      // back to the record list after a submission
	ExitBack      // cancelled or discarded
	ExitQuit      // ctrl+c
)

type phase int

const (
	phaseEditing phase = iota
	phaseSubmitting
	phaseDone
)

const (
	defaultSubmitTimeout = 30 * time.Second
	draftTimeout         = 5 * time.Second
)

// Options configures a Model.
type Options struct {
	// Drafts enables the Save draft button and ctrl+s. Nil disables both.
	Drafts engine.DraftSaver
	// NotifyInvalid also toasts validation failures.
	NotifyInvalid bool
	// ReviewTemplate is an optional path to a custom review template.
	ReviewTemplate string
	// SubmitTimeout bounds one submission including post-submit hooks.
	SubmitTimeout time.Duration
	// Hooks run after every successful submission. Nil runs none.
	Hooks *hooks.Runner
	// Original holds the stored record in edit mode, used for the diff on
	// the review step.
	Original engine.Values
	ShowDiff bool
}

// SubmitDoneMsg carries the outcome of a background submission.
type SubmitDoneMsg struct {
	Result     engine.SubmitResult
	HookOutput string
}

type draftSavedMsg struct {
	ok    bool
	leave bool
}

// Result is what Run returns once the program exits.
type Result struct {
	Exit      Exit
	Submitted []engine.Receipt
	ShowDiff  bool
}

// Model is the BubbleTea model for one wizard session.
type Model struct {
	wiz     *engine.Wizard
	schema  *engine.Schema
	coord   *engine.Coordinator
	opts    Options
	notices *noticeQueue

	inputs    []*fieldInput
	focus     int // index into inputs, len(inputs) when the buttons have focus
	reviewing bool
	buttons   *ButtonBar
	confirm   *ButtonBar // discard confirmation, nil when hidden
	review    viewport.Model
	toast     *Toast

	phase      phase
	dirty      bool
	exit       Exit
	submitted  []engine.Receipt
	hookOutput string

	width  int
	height int
}

// New creates a Model driving w. Submissions go to p.
func New(w *engine.Wizard, p engine.Persister, opts Options) *Model {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = defaultSubmitTimeout
	}
	m := &Model{
		wiz:     w,
		schema:  w.Schema(),
		opts:    opts,
		notices: &noticeQueue{},
		buttons: NewButtonBar(nil),
		toast:   NewToast(),
		width:   100,
		height:  32,
	}

	copts := []engine.CoordinatorOption{
		engine.WithNotifier(m.notices),
		engine.WithNavigator(m),
		engine.WithInvalidNotices(opts.NotifyInvalid),
	}
	if opts.Drafts != nil {
		copts = append(copts, engine.WithDraftSaver(opts.Drafts))
	}
	m.coord = engine.NewCoordinator(w, p, copts...)

	m.review = viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	m.review.MouseWheelEnabled = true
	m.review.MouseWheelDelta = 3

	m.loadStep()
	return m
}

// Run starts a standalone program for m and blocks until the user leaves.
func Run(m *Model) (Result, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return Result{}, fmt.Errorf("wizard failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type")
	}
	return fm.Result(), nil
}

// GoToList implements engine.Navigator.
func (m *Model) GoToList() { m.exit = ExitList }

// GoBack implements engine.Navigator.
func (m *Model) GoBack() { m.exit = ExitBack }

// Result reports how the session ended.
func (m *Model) Result() Result {
	return Result{
		Exit:      m.exit,
		Submitted: slices.Clone(m.submitted),
		ShowDiff:  m.opts.ShowDiff,
	}
}

// Init focuses the first input.
func (m *Model) Init() tea.Cmd {
	if in := m.focusedInput(); in != nil {
		return in.Focus()
	}
	return nil
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.PasteMsg:
		if in := m.focusedInput(); in != nil && m.phase == phaseEditing && m.confirm == nil {
			cmd := in.Update(msg)
			if in.Changed() {
				m.commit(in)
			}
			return m, cmd
		}
		return m, nil

	case FieldEditedMsg:
		for _, in := range m.inputs {
			if in.field.Name == msg.Field && in.mode == modeArea {
				in.area.SetValue(strings.TrimRight(msg.Content, "\n"))
				if in.Changed() {
					m.commit(in)
				}
			}
		}
		return m, nil

	case SubmitDoneMsg:
		return m, m.handleSubmitDone(msg)

	case draftSavedMsg:
		if !msg.ok {
			return m, m.toast.Show(engine.NoticeError, "Could not save draft")
		}
		m.dirty = false
		if msg.leave {
			m.coord.Cancel()
			return m, tea.Quit
		}
		return m, m.toast.Show(engine.NoticeSuccess, "Draft saved")

	case ToastDismissMsg:
		return m, m.toast.Update(msg)
	}

	if m.reviewing {
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.exit = ExitQuit
		return tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmKey(key)
	}

	switch m.phase {
	case phaseSubmitting:
		return nil
	case phaseDone:
		return m.handleDoneKey(key)
	}

	switch key {
	case "esc":
		if m.dirty {
			m.confirm = NewButtonBar(CreateDiscardButtons(m.opts.Drafts != nil))
			m.confirm.SetWidth(m.contentWidth())
			m.confirm.FocusFirst()
			return nil
		}
		m.coord.Cancel()
		return tea.Quit
	case "tab":
		return m.focusNext()
	case "shift+tab":
		return m.focusPrev()
	case "ctrl+s":
		return m.saveDraft(false)
	case "pgdown":
		if !m.reviewing {
			return m.next()
		}
		return nil
	case "pgup":
		return m.previous()
	case "ctrl+d":
		if m.reviewing {
			m.opts.ShowDiff = !m.opts.ShowDiff
			m.refreshReview()
		}
		return nil
	case "ctrl+e":
		if in := m.focusedInput(); in != nil && in.Multiline() {
			return openEditor(in.field.Name, in.text())
		}
		return nil
	case "enter":
		in := m.focusedInput()
		if in == nil {
			if a, ok := m.buttons.Focused(); ok {
				return m.activate(a)
			}
			return nil
		}
		if !in.Multiline() {
			if m.focus+1 < len(m.inputs) {
				return m.setFocus(m.focus + 1)
			}
			m.setFocus(len(m.inputs))
			m.buttons.FocusAction(m.primaryAction())
			return nil
		}
	}

	if n, ok := jumpKey(key); ok {
		return m.jump(n)
	}

	if in := m.focusedInput(); in != nil {
		cmd := in.Update(msg)
		if in.Changed() {
			m.commit(in)
		}
		return cmd
	}

	switch key {
	case "left", "h":
		if !m.buttons.FocusPrev() {
			m.buttons.FocusLast()
		}
		return nil
	case "right", "l":
		if !m.buttons.FocusNext() {
			m.buttons.FocusFirst()
		}
		return nil
	}

	if m.reviewing {
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return cmd
	}
	return nil
}

// jumpKey parses alt+1 through alt+9.
func jumpKey(key string) (int, bool) {
	if len(key) != 5 || !strings.HasPrefix(key, "alt+") {
		return 0, false
	}
	c := key[4]
	if c < '1' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

func (m *Model) handleConfirmKey(key string) tea.Cmd {
	switch key {
	case "esc":
		m.confirm = nil
	case "tab", "right", "l":
		if !m.confirm.FocusNext() {
			m.confirm.FocusFirst()
		}
	case "shift+tab", "left", "h":
		if !m.confirm.FocusPrev() {
			m.confirm.FocusLast()
		}
	case "enter":
		if a, ok := m.confirm.Focused(); ok {
			m.confirm = nil
			if a == ActionSaveDraft {
				return m.saveDraft(true)
			}
			return m.activate(a)
		}
	}
	return nil
}

func (m *Model) handleDoneKey(key string) tea.Cmd {
	switch key {
	case "esc":
		return m.activate(ActionBackToList)
	case "tab", "right", "l":
		if !m.buttons.FocusNext() {
			m.buttons.FocusFirst()
		}
	case "shift+tab", "left", "h":
		if !m.buttons.FocusPrev() {
			m.buttons.FocusLast()
		}
	case "enter":
		if a, ok := m.buttons.Focused(); ok {
			return m.activate(a)
		}
	}
	return nil
}

func (m *Model) activate(a ButtonAction) tea.Cmd {
	switch a {
	case ActionBack:
		return m.previous()
	case ActionNext:
		return m.next()
	case ActionSubmit:
		return m.submit()
	case ActionSaveDraft:
		return m.saveDraft(false)
	case ActionCreateAnother:
		m.coord.ContinueAdding()
		m.phase = phaseEditing
		m.dirty = false
		m.hookOutput = ""
		m.opts.Original = nil
		return m.loadStep()
	case ActionBackToList:
		m.coord.ReturnToList()
		return tea.Quit
	case ActionDiscard:
		m.coord.Cancel()
		return tea.Quit
	case ActionKeepEditing:
		m.confirm = nil
	}
	return nil
}

// loadStep rebuilds the inputs for the wizard's current step.
func (m *Model) loadStep() tea.Cmd {
	idx := m.wiz.CurrentStep()
	step, _ := m.schema.Step(idx)
	m.reviewing = idx == m.schema.Last()
	m.inputs = nil

	if m.reviewing {
		m.refreshReview()
	} else {
		for _, name := range step.Fields {
			f, ok := m.schema.Field(name)
			if !ok {
				continue
			}
			in := newFieldInput(f, m.wiz.Read(name))
			in.SetWidth(m.contentWidth())
			m.inputs = append(m.inputs, in)
		}
	}
	m.refreshButtons()

	if len(m.inputs) > 0 {
		return m.setFocus(0)
	}
	m.setFocus(0)
	m.buttons.FocusAction(m.primaryAction())
	return nil
}

func (m *Model) refreshButtons() {
	if m.phase == phaseDone {
		m.buttons.SetButtons(CreateCompletionButtons())
		return
	}
	m.buttons.SetButtons(CreateStepButtons(
		m.wiz.CurrentStep() != m.schema.First(),
		m.opts.Drafts != nil,
		m.reviewing,
		m.phase == phaseSubmitting,
	))
	m.buttons.SetWidth(m.contentWidth())
}

func (m *Model) primaryAction() ButtonAction {
	if m.reviewing {
		return ActionSubmit
	}
	return ActionNext
}

func (m *Model) focusedInput() *fieldInput {
	if m.focus < 0 || m.focus >= len(m.inputs) {
		return nil
	}
	return m.inputs[m.focus]
}

// setFocus focuses input i, or hands focus to the buttons when i is past
// the last input.
func (m *Model) setFocus(i int) tea.Cmd {
	for _, in := range m.inputs {
		in.Blur()
	}
	m.buttons.Blur()
	m.focus = clamp(i, 0, len(m.inputs))
	if in := m.focusedInput(); in != nil {
		return in.Focus()
	}
	return nil
}

func (m *Model) focusNext() tea.Cmd {
	if m.focusedInput() != nil {
		if m.focus+1 < len(m.inputs) {
			return m.setFocus(m.focus + 1)
		}
		m.setFocus(len(m.inputs))
		m.buttons.FocusFirst()
		return nil
	}
	if m.buttons.FocusNext() {
		return nil
	}
	if len(m.inputs) > 0 {
		return m.setFocus(0)
	}
	m.buttons.FocusFirst()
	return nil
}

func (m *Model) focusPrev() tea.Cmd {
	if m.focusedInput() != nil {
		if m.focus > 0 {
			return m.setFocus(m.focus - 1)
		}
		m.setFocus(len(m.inputs))
		m.buttons.FocusLast()
		return nil
	}
	if m.buttons.FocusPrev() {
		return nil
	}
	if len(m.inputs) > 0 {
		return m.setFocus(len(m.inputs) - 1)
	}
	m.buttons.FocusLast()
	return nil
}

// commit writes an input's value to the wizard. Text that does not parse
// commits the empty value so validation reports the field.
func (m *Model) commit(in *fieldInput) {
	v, perr := in.Value()
	in.parseErr = perr
	m.wiz.Update(in.field.Name, v)
	m.dirty = true
}

func (m *Model) next() tea.Cmd {
	t := m.coord.Next()
	cmd := m.flushNotices()
	if t.Moved {
		return tea.Batch(cmd, m.loadStep())
	}
	for i, in := range m.inputs {
		if _, bad := t.Result.Failures[in.field.Name]; bad {
			return tea.Batch(cmd, m.setFocus(i))
		}
	}
	return cmd
}

func (m *Model) previous() tea.Cmd {
	if !m.wiz.GoPrevious() {
		return nil
	}
	return m.loadStep()
}

// jump moves to the n-th step as numbered on the progress rail.
func (m *Model) jump(n int) tea.Cmd {
	if !m.wiz.GoToStep(m.schema.First() + n - 1) {
		return nil
	}
	return m.loadStep()
}

func (m *Model) submit() tea.Cmd {
	if m.phase != phaseEditing || !m.reviewing {
		return nil
	}
	m.phase = phaseSubmitting
	m.refreshButtons()

	coord, timeout, runner := m.coord, m.opts.SubmitTimeout, m.opts.Hooks
	mode := m.wiz.State().Mode

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res := coord.Submit(ctx)
		if res.Outcome != engine.OutcomeSucceeded || runner == nil {
			return SubmitDoneMsg{Result: res}
		}
		out, err := runner.PostSubmit(ctx, hooks.Event{
			Form:     coord.Wizard().Schema().ID,
			RecordID: res.Receipt.ID,
			Mode:     mode,
			Values:   coord.Wizard().Values(),
		})
		if err != nil {
			logger.Warn("Post-submit hooks interrupted: %v", err)
		}
		return SubmitDoneMsg{Result: res, HookOutput: out}
	}
}

func (m *Model) handleSubmitDone(msg SubmitDoneMsg) tea.Cmd {
	m.phase = phaseEditing
	cmd := m.flushNotices()

	switch msg.Result.Outcome {
	case engine.OutcomeSucceeded:
		m.submitted = append(m.submitted, msg.Result.Receipt)
		m.hookOutput = msg.HookOutput
		m.dirty = false
		m.phase = phaseDone
		m.inputs = nil
		m.buttons.SetButtons(CreateCompletionButtons())
		m.buttons.SetWidth(m.contentWidth())
		m.buttons.FocusFirst()
		return cmd
	case engine.OutcomeBlocked:
		if cmd == nil {
			text := msg.Result.Validation.Message()
			if msg.Result.Err != nil {
				text = msg.Result.Err.Error()
			}
			if text != "" {
				cmd = m.toast.Show(engine.NoticeError, text)
			}
		}
		return tea.Batch(cmd, m.loadStep())
	default:
		m.refreshButtons()
		m.buttons.FocusAction(ActionSubmit)
		return cmd
	}
}

func (m *Model) saveDraft(leave bool) tea.Cmd {
	if m.opts.Drafts == nil {
		return nil
	}
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), draftTimeout)
		defer cancel()
		return draftSavedMsg{ok: coord.SaveDraft(ctx), leave: leave}
	}
}

// flushNotices shows the most recent coordinator notice as a toast.
func (m *Model) flushNotices() tea.Cmd {
	items := m.notices.drain()
	if len(items) == 0 {
		return nil
	}
	last := items[len(items)-1]
	return m.toast.Show(last.kind, last.message)
}

func (m *Model) modalWidth() int {
	return clamp(m.width-10, 60, 100)
}

func (m *Model) contentWidth() int {
	return m.modalWidth() - 8
}

func (m *Model) resize() {
	for _, in := range m.inputs {
		in.SetWidth(m.contentWidth())
	}
	m.buttons.SetWidth(m.contentWidth())
	if m.confirm != nil {
		m.confirm.SetWidth(m.contentWidth())
	}
	if m.reviewing {
		m.refreshReview()
	}
}

// refreshReview re-renders the review summary and, in edit mode, the diff
// against the stored record.
func (m *Model) refreshReview() {
	st := m.wiz.State()
	width := m.contentWidth()

	md, err := template.BuildReview(template.ReviewConfig{
		Schema:       m.schema,
		Values:       m.wiz,
		Mode:         st.Mode,
		RecordID:     st.RecordID,
		TemplatePath: m.opts.ReviewTemplate,
	})
	if err != nil {
		md = "Could not build the review: " + err.Error()
	}
	content := renderMarkdown(md, width)

	if m.opts.ShowDiff && st.Mode == engine.ModeEdit && m.opts.Original != nil {
		if d := valuesDiff(m.schema, m.opts.Original, m.wiz.Values()); d != "" {
			content += "\n\n" + highlightDiff(d)
		}
	}

	m.review.SetWidth(width)
	m.review.SetHeight(clamp(m.height-16, 5, 30))
	m.review.SetContent(content)
	m.review.GotoTop()
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	content := m.renderModal()

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})
	if t := m.toast.View(m.width); t != "" && m.height > 2 {
		uv.NewStyledString(t).Draw(canvas, uv.Rectangle{
			Min: uv.Position{X: 0, Y: m.height - 2},
			Max: uv.Position{X: m.width, Y: m.height - 1},
		})
	}

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderModal lays out the title, progress rail, step body and buttons in
// a centered modal.
func (m *Model) renderModal() string {
	s := theme.Current().S()
	st := m.wiz.State()

	subtitle := "New record"
	if st.Mode == engine.ModeEdit {
		subtitle = "Editing " + st.RecordID
	}
	sections := []string{
		s.ModalTitle.Render(m.schema.Title) + "  " + s.ModalSubtitle.Render(subtitle),
		m.renderRail(st),
		"",
	}

	buttons := m.buttons.Render()
	switch {
	case m.confirm != nil:
		sections = append(sections, s.FieldLabelFocused.Render("You have unsaved changes. Leave this record?"))
		buttons = m.confirm.Render()
	case m.phase == phaseDone:
		sections = append(sections, m.renderDone())
	case m.reviewing:
		sections = append(sections, m.review.View())
	default:
		sections = append(sections, m.renderFields(st.CurrentStep))
	}
	sections = append(sections, "", buttons, m.renderHints())

	modal := s.ModalContainer.Width(m.modalWidth()).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderRail shows every step as ✓ (completed), ● (current) or ○.
func (m *Model) renderRail(st engine.State) string {
	s := theme.Current().S()
	var parts []string
	for i := m.schema.First(); i <= m.schema.Last(); i++ {
		step, _ := m.schema.Step(i)
		label := fmt.Sprintf("%d %s", i-m.schema.First()+1, step.Title)
		switch {
		case i == st.CurrentStep:
			parts = append(parts, s.RailCurrent.Render("● "+label))
		case slices.Contains(st.CompletedSteps, i):
			parts = append(parts, s.RailDone.Render("✓ "+label))
		default:
			parts = append(parts, s.RailPending.Render("○ "+label))
		}
	}
	return lipgloss.NewStyle().Width(m.contentWidth()).Render(strings.Join(parts, "  "))
}

func (m *Model) renderFields(index int) string {
	s := theme.Current().S()
	if len(m.inputs) == 0 {
		return s.FieldHelp.Render("Nothing to fill in on this step.")
	}
	step, _ := m.schema.Step(index)

	var lines []string
	for i, in := range m.inputs {
		label := in.field.Label
		if slices.Contains(step.Required, in.field.Name) {
			label += " *"
		}
		if i == m.focus {
			lines = append(lines, s.FieldLabelFocused.Render(label))
		} else {
			lines = append(lines, s.FieldLabel.Render(label))
		}
		lines = append(lines, in.View())
		if in.field.Help != "" {
			lines = append(lines, s.FieldHelp.Render(in.field.Help))
		}
		msg := in.parseErr
		if msg == "" {
			msg = m.wiz.FieldError(in.field.Name)
		}
		if msg != "" {
			lines = append(lines, s.FieldError.Render("✗ "+msg))
		}
		if i < len(m.inputs)-1 {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDone() string {
	s := theme.Current().S()
	var lines []string
	if n := len(m.submitted); n > 0 {
		r := m.submitted[n-1]
		lines = append(lines, s.RailDone.Render(fmt.Sprintf("✓ Saved %s record %s", m.schema.Title, r.ID)))
	}
	if m.hookOutput != "" {
		lines = append(lines, "", s.FieldHelp.Render(m.hookOutput))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHints() string {
	switch {
	case m.confirm != nil:
		return renderHintBar("←→", "choose", "enter", "confirm", "esc", "keep editing")
	case m.phase == phaseSubmitting:
		return renderHintBar("ctrl+c", "quit")
	case m.phase == phaseDone:
		return renderHintBar("←→", "choose", "enter", "confirm", "esc", "back to list")
	case m.reviewing:
		if m.opts.Original != nil {
			return renderHintBar("↑↓", "scroll", "pgup", "back", "ctrl+d", "toggle diff", "esc", "leave")
		}
		return renderHintBar("↑↓", "scroll", "pgup", "back", "enter", "submit", "esc", "leave")
	}
	pairs := []string{"tab", "next field", "pgdn/pgup", "step", "alt+1-9", "jump"}
	if m.opts.Drafts != nil {
		pairs = append(pairs, "ctrl+s", "save draft")
	}
	if in := m.focusedInput(); in != nil && in.Multiline() {
		pairs = append(pairs, "ctrl+e", "editor")
	}
	return renderHintBar(append(pairs, "esc", "leave")...)
}

package wizard

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/mark3labs/labwiz/internal/wizard"
)

func TestToast_ShowAndDismiss(t *testing.T) {
	toast := NewToast()
	assert.Equal(t, "", toast.View(80))

	cmd := toast.Show(engine.NoticeSuccess, "Draft saved")
	require.NotNil(t, cmd, "Show returns the dismissal tick")
	assert.True(t, toast.IsVisible())
	assert.Equal(t, "Draft saved", toast.GetMessage())
	assert.Contains(t, ansi.Strip(toast.View(80)), "Draft saved")

	toast.Update(ToastDismissMsg{Seq: toast.seq})
	assert.False(t, toast.IsVisible())
	assert.Equal(t, "", toast.GetMessage())
	assert.Equal(t, "", toast.View(80))
}

func TestToast_NewerToastSurvivesOldTick(t *testing.T) {
	toast := NewToast()
	toast.Show(engine.NoticeSuccess, "first")
	old := toast.seq
	toast.Show(engine.NoticeError, "second")

	toast.Update(ToastDismissMsg{Seq: old})

	assert.Equal(t, "second", toast.GetMessage())
	assert.Equal(t, engine.NoticeError, toast.Kind())
}

func TestNoticeQueue(t *testing.T) {
	var q noticeQueue
	q.Notify(engine.NoticeError, "a")
	q.Notify(engine.NoticeSuccess, "b")

	items := q.drain()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].message)
	assert.Empty(t, q.drain())
}

func TestButtonBar_Focus(t *testing.T) {
	bar := NewButtonBar(CreateStepButtons(false, true, false, false))
	_, ok := bar.Focused()
	assert.False(t, ok)

	require.True(t, bar.FocusFirst())
	a, _ := bar.Focused()
	assert.Equal(t, ActionSaveDraft, a, "disabled Back is skipped")

	require.True(t, bar.FocusNext())
	a, _ = bar.Focused()
	assert.Equal(t, ActionNext, a)

	assert.False(t, bar.FocusNext(), "running off the end clears focus")
	_, ok = bar.Focused()
	assert.False(t, ok)

	require.True(t, bar.FocusLast())
	assert.False(t, bar.FocusAction(ActionBack))
}

func TestButtonBar_SetButtonsKeepsFocus(t *testing.T) {
	bar := NewButtonBar(CreateStepButtons(true, true, true, false))
	require.True(t, bar.FocusAction(ActionSaveDraft))

	bar.SetButtons(CreateStepButtons(true, true, true, false))
	a, ok := bar.Focused()
	require.True(t, ok)
	assert.Equal(t, ActionSaveDraft, a)

	bar.SetButtons(CreateStepButtons(true, true, true, true))
	_, ok = bar.Focused()
	assert.False(t, ok, "focus is dropped when the button becomes disabled")
}

func TestCreateStepButtons(t *testing.T) {
	labels := func(bs []Button) string {
		var out []string
		for _, b := range bs {
			out = append(out, b.Label)
		}
		return strings.Join(out, "|")
	}

	assert.Equal(t, "← Back|Next →", labels(CreateStepButtons(true, false, false, false)))
	assert.Equal(t, "← Back|Save draft|Submit", labels(CreateStepButtons(true, true, true, false)))

	submitting := CreateStepButtons(true, true, true, true)
	assert.Equal(t, "Submitting…", submitting[2].Label)
	for _, b := range submitting {
		assert.Equal(t, ButtonDisabled, b.State, b.Label)
	}

	assert.Equal(t, "Keep editing|Discard", labels(CreateDiscardButtons(false)))
	assert.Equal(t, "Create another|Back to list", labels(CreateCompletionButtons()))
}

func TestButtonBar_Render(t *testing.T) {
	bar := NewButtonBar(CreateCompletionButtons())
	bar.SetWidth(50)
	out := ansi.Strip(bar.Render())
	assert.Contains(t, out, "Create another")
	assert.Contains(t, out, "Back to list")
	assert.Equal(t, "", NewButtonBar(nil).Render())
}

func TestFieldInput_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		field engine.Field
		mode  inputMode
	}{
		{"text", engine.Field{Name: "a", Label: "A", Kind: engine.KindText}, modeLine},
		{"multiline", engine.Field{Name: "a", Label: "A", Kind: engine.KindText, Multiline: true}, modeArea},
		{"options", engine.Field{Name: "a", Label: "A", Kind: engine.KindText, Options: []string{"x"}}, modeOptions},
		{"bool", engine.Field{Name: "a", Label: "A", Kind: engine.KindBool}, modeToggle},
		{"number", engine.Field{Name: "a", Label: "A", Kind: engine.KindNumber}, modeLine},
		{"list", engine.Field{Name: "a", Label: "A", Kind: engine.KindList}, modeLine},
		{"files", engine.Field{Name: "a", Label: "A", Kind: engine.KindFiles}, modeLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newFieldInput(tt.field, engine.Empty(tt.field.Kind))
			assert.Equal(t, tt.mode, in.mode)
			assert.False(t, in.Changed(), "loading a value is not a change")
		})
	}
}

func TestFieldInput_ListRoundTrip(t *testing.T) {
	f := engine.Field{Name: "tags", Label: "Tags", Kind: engine.KindList}
	in := newFieldInput(f, engine.ListValue("lab", "shared"))

	v, perr := in.Value()
	assert.Empty(t, perr)
	assert.True(t, v.Equal(engine.ListValue("lab", "shared")))

	in.Focus()
	in.Update(tea.KeyPressMsg{Code: ',', Text: ","})
	in.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	require.True(t, in.Changed())
	v, _ = in.Value()
	assert.Equal(t, []string{"lab", "shared", "x"}, v.List)
}

func TestFieldInput_UnfocusedIgnoresKeys(t *testing.T) {
	f := engine.Field{Name: "a", Label: "A", Kind: engine.KindText}
	in := newFieldInput(f, engine.TextValue("keep"))

	in.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	assert.False(t, in.Changed())
}

func TestSanitizePaste(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\r\nb", "a\nb"},
		{"\x1b[1;31mred\x1b[0m", "red"},
		{"tab\there", "tab\there"},
		{"nul\x00byte", "nulbyte"},
		{"trailing  \n\n", "trailing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizePaste(tt.in), "%q", tt.in)
	}
	assert.Equal(t, "a b c", collapseNewlines("a\n\nb\nc"))
}

func TestValuesDiff(t *testing.T) {
	schema := &engine.Schema{
		ID:    "x",
		Title: "X",
		Fields: []engine.Field{
			{Name: "title", Label: "Title", Kind: engine.KindText},
			{Name: "count", Label: "Count", Kind: engine.KindNumber},
		},
	}
	before := engine.Values{"title": engine.TextValue("Old"), "count": engine.NumberValue(2)}

	assert.Equal(t, "", valuesDiff(schema, before, before.Clone()))

	after := engine.Values{"title": engine.TextValue("New"), "count": engine.NumberValue(2)}
	d := valuesDiff(schema, before, after)
	assert.Contains(t, d, "-Title: Old")
	assert.Contains(t, d, "+Title: New")
	assert.Contains(t, d, " Count: 2")

	highlighted := ansi.Strip(highlightDiff(d))
	assert.Contains(t, highlighted, "+Title: New")

	plain := ansi.Strip(styleDiff(d))
	assert.Contains(t, plain, "-Title: Old")
}

func TestRenderMarkdown(t *testing.T) {
	out := ansi.Strip(renderMarkdown("# Heading\n\n- **Title**: Widget", 60))
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "Widget")
}

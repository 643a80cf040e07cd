package wizard

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/labwiz/internal/tui/theme"
	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 3 * time.Second

// ToastDismissMsg is sent when the toast should be dismissed. Seq guards
// against an older tick hiding a newer toast.
type ToastDismissMsg struct {
	Seq int
}

// Toast is a single-line notification drawn in the bottom-right corner.
type Toast struct {
	message string
	kind    engine.NoticeKind
	visible bool
	seq     int
}

// NewToast creates a new Toast component.
func NewToast() *Toast {
	return &Toast{}
}

// Show displays a message and schedules its dismissal.
func (t *Toast) Show(kind engine.NoticeKind, msg string) tea.Cmd {
	t.seq++
	t.message = msg
	t.kind = kind
	t.visible = true
	seq := t.seq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastDismissMsg{Seq: seq}
	})
}

// Update handles dismissal ticks.
func (t *Toast) Update(msg tea.Msg) tea.Cmd {
	if m, ok := msg.(ToastDismissMsg); ok && m.Seq == t.seq {
		t.visible = false
		t.message = ""
	}
	return nil
}

// View renders the toast right-aligned in a row of the given width.
// Returns empty string if toast is not visible.
func (t *Toast) View(width int) string {
	if !t.visible || t.message == "" {
		return ""
	}

	s := theme.Current().S()
	style := s.ToastSuccess
	if t.kind == engine.NoticeError {
		style = s.ToastError
	}

	content := style.Render(t.message)
	if lipgloss.Width(content) > width-2 && width > 2 {
		content = style.Width(width - 2).Render(t.message)
	}

	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Right).
		PaddingRight(1).
		Render(content)
}

// IsVisible returns whether the toast is currently visible.
func (t *Toast) IsVisible() bool {
	return t.visible
}

// GetMessage returns the current toast message (empty if not visible).
func (t *Toast) GetMessage() string {
	if !t.visible {
		return ""
	}
	return t.message
}

// Kind returns the kind of the visible toast.
func (t *Toast) Kind() engine.NoticeKind {
	return t.kind
}

package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mark3labs/labwiz/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// ButtonAction identifies what a button does when pressed.
type ButtonAction int

const (
	ActionBack ButtonAction = iota
	ActionNext
	ActionSubmit
	ActionSaveDraft
	ActionCreateAnother
	ActionBackToList
	ActionDiscard
	ActionKeepEditing
)

// Button represents a single button in the button bar.
type Button struct {
	Label  string
	State  ButtonState
	Action ButtonAction
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	focus   int // -1 when no button is focused
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		focus:   -1,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetButtons replaces the buttons, keeping focus on the same action when it
// is still present and enabled.
func (b *ButtonBar) SetButtons(buttons []Button) {
	var focused *ButtonAction
	if a, ok := b.Focused(); ok {
		focused = &a
	}
	b.buttons = buttons
	b.focus = -1
	if focused != nil {
		for i, btn := range buttons {
			if btn.Action == *focused && btn.State != ButtonDisabled {
				b.focus = i
			}
		}
	}
}

// FocusFirst focuses the first enabled button. Returns false if none is.
func (b *ButtonBar) FocusFirst() bool {
	b.focus = -1
	return b.FocusNext()
}

// FocusLast focuses the last enabled button. Returns false if none is.
func (b *ButtonBar) FocusLast() bool {
	b.focus = len(b.buttons)
	return b.FocusPrev()
}

// FocusAction focuses the button with action a if it is enabled.
func (b *ButtonBar) FocusAction(a ButtonAction) bool {
	for i, btn := range b.buttons {
		if btn.Action == a && btn.State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	return false
}

// FocusNext moves focus to the next enabled button. Returns false when it
// runs off the end, leaving no button focused.
func (b *ButtonBar) FocusNext() bool {
	for i := b.focus + 1; i < len(b.buttons); i++ {
		if b.buttons[i].State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	b.focus = -1
	return false
}

// FocusPrev moves focus to the previous enabled button. Returns false when
// it runs off the start, leaving no button focused.
func (b *ButtonBar) FocusPrev() bool {
	for i := b.focus - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	b.focus = -1
	return false
}

// Blur removes focus from all buttons.
func (b *ButtonBar) Blur() {
	b.focus = -1
}

// Focused returns the focused button's action.
func (b *ButtonBar) Focused() (ButtonAction, bool) {
	if b.focus < 0 || b.focus >= len(b.buttons) {
		return 0, false
	}
	return b.buttons[b.focus].Action, true
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()

	// Render each button
	var renderedButtons []string
	for i, btn := range b.buttons {
		state := btn.State
		if i == b.focus && state != ButtonDisabled {
			state = ButtonFocused
		}
		var rendered string
		switch state {
		case ButtonDisabled:
			rendered = s.ButtonDisabled.Render(btn.Label)
		case ButtonFocused:
			rendered = s.ButtonFocused.Render(btn.Label)
		default: // ButtonNormal
			rendered = s.ButtonNormal.Render(btn.Label)
		}
		renderedButtons = append(renderedButtons, rendered)
	}

	// Join buttons with spacing
	result := strings.Join(renderedButtons, "")

	// Center the button bar
	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, result)
}

// CreateStepButtons creates the Back / Save draft / Next button set for an
// editing step. On the review step Next becomes Submit.
// backEnabled: whether Back button is enabled
// drafts: whether a draft saver is configured
// review: whether the current step is the review step
// submitting: whether a submission is in flight
func CreateStepButtons(backEnabled, drafts, review, submitting bool) []Button {
	buttons := make([]Button, 0, 3)

	backState := ButtonNormal
	if !backEnabled || submitting {
		backState = ButtonDisabled
	}
	buttons = append(buttons, Button{Label: "← Back", State: backState, Action: ActionBack})

	if drafts {
		draftState := ButtonNormal
		if submitting {
			draftState = ButtonDisabled
		}
		buttons = append(buttons, Button{Label: "Save draft", State: draftState, Action: ActionSaveDraft})
	}

	switch {
	case review && submitting:
		buttons = append(buttons, Button{Label: "Submitting…", State: ButtonDisabled, Action: ActionSubmit})
	case review:
		buttons = append(buttons, Button{Label: "Submit", State: ButtonNormal, Action: ActionSubmit})
	default:
		buttons = append(buttons, Button{Label: "Next →", State: ButtonNormal, Action: ActionNext})
	}

	return buttons
}

// CreateCompletionButtons creates the choices offered after a successful
// submission.
func CreateCompletionButtons() []Button {
	return []Button{
		{Label: "Create another", State: ButtonNormal, Action: ActionCreateAnother},
		{Label: "Back to list", State: ButtonNormal, Action: ActionBackToList},
	}
}

// CreateDiscardButtons creates the discard confirmation choices.
func CreateDiscardButtons(drafts bool) []Button {
	buttons := []Button{{Label: "Keep editing", State: ButtonNormal, Action: ActionKeepEditing}}
	if drafts {
		buttons = append(buttons, Button{Label: "Save draft", State: ButtonNormal, Action: ActionSaveDraft})
	}
	return append(buttons, Button{Label: "Discard", State: ButtonNormal, Action: ActionDiscard})
}

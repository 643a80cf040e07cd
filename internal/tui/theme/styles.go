package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style

	// Modal
	ModalContainer lipgloss.Style
	ModalTitle     lipgloss.Style
	ModalSubtitle  lipgloss.Style

	// Hint bar
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Progress rail
	RailDone    lipgloss.Style
	RailCurrent lipgloss.Style
	RailPending lipgloss.Style

	// Fields
	FieldLabel        lipgloss.Style
	FieldLabelFocused lipgloss.Style
	FieldHelp         lipgloss.Style
	FieldError        lipgloss.Style
	FieldValue        lipgloss.Style

	// Buttons
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	// Toasts
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	// Diff
	DiffInsert  lipgloss.Style
	DiffDelete  lipgloss.Style
	DiffContext lipgloss.Style

	// Record table
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style
}

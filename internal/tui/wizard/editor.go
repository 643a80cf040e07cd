package wizard

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/mark3labs/labwiz/internal/logger"
)

// FieldEditedMsg carries the text of a field after an external edit.
type FieldEditedMsg struct {
	Field   string
	Content string
}

// openEditor launches the user's $EDITOR on the text of a multi-line field.
// Failures are logged and leave the field untouched.
func openEditor(field, content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "labwiz_"+field+"_*.md")
	if err != nil {
		logger.Warn("Cannot create temp file for editor: %v", err)
		return nil
	}
	path := tmpfile.Name()

	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(path)
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("labwiz", path)
	if err != nil {
		logger.Warn("No editor available: %v", err)
		_ = os.Remove(path)
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return FieldEditedMsg{Field: field, Content: string(data)}
	})
}

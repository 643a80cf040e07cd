package wizard

import (
	"regexp"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/labwiz/internal/tui/theme"
	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// inputMode selects how a field is edited.
type inputMode int

const (
	modeLine    inputMode = iota // textinput: text, number, list, files
	modeArea                     // textarea: multi-line text
	modeToggle                   // bool
	modeOptions                  // text with a fixed option list
)

// fieldInput edits one field. It keeps the raw text the user typed so a
// value that does not parse yet (a half-typed number) is not lost.
type fieldInput struct {
	field engine.Field
	mode  inputMode

	line   textinput.Model
	area   textarea.Model
	toggle bool
	option int // index into field.Options, -1 for none

	raw      string // last committed raw text
	parseErr string // set when raw does not parse as the field's kind
	focused  bool
}

func newFieldInput(f engine.Field, v engine.Value) *fieldInput {
	in := &fieldInput{field: f, option: -1}
	switch {
	case f.Kind == engine.KindBool:
		in.mode = modeToggle
	case len(f.Options) > 0 && f.Kind == engine.KindText:
		in.mode = modeOptions
	case f.Multiline && f.Kind == engine.KindText:
		in.mode = modeArea
		in.area = newTextarea(f)
	default:
		in.mode = modeLine
		in.line = newTextinput(f)
	}
	in.SetValue(v)
	return in
}

func newTextinput(f engine.Field) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = f.Placeholder
	ti.Prompt = ""

	th := theme.Current()
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(th.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(th.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(th.BgOverlay)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(th.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(th.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	ti.SetWidth(50)
	return ti
}

func newTextarea(f engine.Field) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = f.Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetWidth(50)
	ta.SetHeight(4)
	return ta
}

// SetValue loads v into the input without marking it changed.
func (in *fieldInput) SetValue(v engine.Value) {
	in.parseErr = ""
	switch in.mode {
	case modeToggle:
		in.toggle = v.Bool
		in.raw = v.String()
	case modeOptions:
		in.option = -1
		for i, o := range in.field.Options {
			if o == v.Text {
				in.option = i
			}
		}
		in.raw = v.Text
	case modeArea:
		in.area.SetValue(v.String())
		in.raw = in.area.Value()
	default:
		in.line.SetValue(v.String())
		in.raw = in.line.Value()
	}
}

// Value returns the field value the input currently holds. A raw text that
// does not parse yields the kind's empty value and a parse error.
func (in *fieldInput) Value() (engine.Value, string) {
	switch in.mode {
	case modeToggle:
		return engine.BoolValue(in.toggle), ""
	case modeOptions:
		if in.option < 0 {
			return engine.Empty(engine.KindText), ""
		}
		return engine.TextValue(in.field.Options[in.option]), ""
	}
	v, err := engine.ParseValue(in.field.Kind, in.text())
	if err != nil {
		return engine.Empty(in.field.Kind), err.Error()
	}
	return v, ""
}

func (in *fieldInput) text() string {
	switch in.mode {
	case modeArea:
		return in.area.Value()
	case modeLine:
		return in.line.Value()
	case modeToggle:
		if in.toggle {
			return "yes"
		}
		return "no"
	default:
		if in.option < 0 {
			return ""
		}
		return in.field.Options[in.option]
	}
}

// Changed reports whether the input differs from the last commit, and
// records the current text as committed.
func (in *fieldInput) Changed() bool {
	t := in.text()
	if t == in.raw {
		return false
	}
	in.raw = t
	return true
}

func (in *fieldInput) Focus() tea.Cmd {
	in.focused = true
	switch in.mode {
	case modeLine:
		return in.line.Focus()
	case modeArea:
		return in.area.Focus()
	}
	return nil
}

func (in *fieldInput) Blur() {
	in.focused = false
	switch in.mode {
	case modeLine:
		in.line.Blur()
	case modeArea:
		in.area.Blur()
	}
}

// Multiline reports whether enter inserts a newline instead of moving on.
func (in *fieldInput) Multiline() bool {
	return in.mode == modeArea
}

// SetWidth resizes the underlying bubble.
func (in *fieldInput) SetWidth(w int) {
	switch in.mode {
	case modeLine:
		in.line.SetWidth(w)
	case modeArea:
		in.area.SetWidth(w)
	}
}

// Update handles a message for a focused input.
func (in *fieldInput) Update(msg tea.Msg) tea.Cmd {
	if paste, ok := msg.(tea.PasteMsg); ok {
		content := sanitizePaste(paste.Content)
		if in.mode != modeArea {
			content = collapseNewlines(content)
		}
		msg = tea.PasteMsg{Content: content}
	}

	switch in.mode {
	case modeToggle:
		if k, ok := msg.(tea.KeyPressMsg); ok {
			switch k.String() {
			case "space", "left", "right":
				in.toggle = !in.toggle
			case "y":
				in.toggle = true
			case "n":
				in.toggle = false
			}
		}
		return nil
	case modeOptions:
		if k, ok := msg.(tea.KeyPressMsg); ok {
			n := len(in.field.Options)
			switch k.String() {
			case "right", "space":
				in.option = (in.option + 1) % n
			case "left":
				if in.option <= 0 {
					in.option = n - 1
				} else {
					in.option--
				}
			case "backspace", "delete":
				in.option = -1
			}
		}
		return nil
	case modeArea:
		var cmd tea.Cmd
		in.area, cmd = in.area.Update(msg)
		return cmd
	default:
		var cmd tea.Cmd
		in.line, cmd = in.line.Update(msg)
		return cmd
	}
}

// View renders the input body (without label or errors).
func (in *fieldInput) View() string {
	s := theme.Current().S()
	switch in.mode {
	case modeToggle:
		yes, no := "( ) yes", "(•) no"
		if in.toggle {
			yes, no = "(•) yes", "( ) no"
		}
		style := s.FieldValue
		if !in.focused {
			style = s.FieldLabel
		}
		return style.Render(yes + "   " + no)
	case modeOptions:
		parts := make([]string, len(in.field.Options))
		for i, o := range in.field.Options {
			if i == in.option {
				parts[i] = s.RailCurrent.Render("[" + o + "]")
			} else {
				parts[i] = s.FieldLabel.Render(" " + o + " ")
			}
		}
		row := strings.Join(parts, " ")
		if in.focused {
			row = "‹ " + row + " ›"
		}
		return row
	case modeArea:
		return in.area.View()
	default:
		return in.line.View()
	}
}

// ansiEscapePattern matches ANSI escape sequences including:
// - Control sequences (ESC [ ...)
// - Private sequences (ESC [ ? ...)
// - Cursor control, color codes, etc.
var ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// sanitizePaste cleans up pasted content by:
// - Stripping ANSI escape sequences
// - Removing null bytes and non-printable control chars (except \n, \t)
// - Normalizing CRLF (\r\n) to LF (\n)
// - Trimming trailing whitespace
func sanitizePaste(content string) string {
	content = ansiEscapePattern.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var result strings.Builder
	for _, r := range content {
		switch {
		case r == '\n' || r == '\t':
			result.WriteRune(r)
		case r < 32 || r == 127:
			continue
		default:
			result.WriteRune(r)
		}
	}

	return strings.TrimRight(result.String(), " \t\n")
}

// newlinePattern matches one or more newline characters
var newlinePattern = regexp.MustCompile(`\n+`)

// collapseNewlines replaces all sequences of newlines with a single space.
// This is used for single-line inputs where newlines should be collapsed.
func collapseNewlines(content string) string {
	return newlinePattern.ReplaceAllString(content, " ")
}

package wizard

import (
	"bytes"
	"strings"

	"charm.land/glamour/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"

	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/tui/theme"
	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// renderMarkdown renders markdown content using glamour.
// Falls back to the raw text if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 120 for readability
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Debug("glamour renderer: %v", err)
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		logger.Debug("glamour render: %v", err)
		return content
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// valuesText lays out values as one "name: value" line per field in schema
// order, the form the diff is computed over.
func valuesText(schema *engine.Schema, values engine.Values) string {
	var b strings.Builder
	for _, f := range schema.Fields {
		v, ok := values[f.Name]
		if !ok || v.IsEmpty() {
			continue
		}
		text := strings.ReplaceAll(v.String(), "\n", "\n  ")
		b.WriteString(f.Label + ": " + text + "\n")
	}
	return b.String()
}

// valuesDiff returns a unified diff between the stored record and the
// values being edited. Empty when nothing changed.
func valuesDiff(schema *engine.Schema, before, after engine.Values) string {
	old, cur := valuesText(schema, before), valuesText(schema, after)
	if old == cur {
		return ""
	}
	return udiff.Unified("stored", "edited", old, cur)
}

// highlightDiff colours a unified diff with chroma. When chroma cannot
// format it falls back to the theme's diff styles.
func highlightDiff(diff string) string {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	bg := chroma.MustParseColour(theme.Current().BgBase)
	if s, err := style.Builder().Transform(func(e chroma.StyleEntry) chroma.StyleEntry {
		e.Background = bg
		return e
	}).Build(); err == nil {
		style = s
	}

	if formatter != nil {
		iterator, err := lexer.Tokenise(nil, diff)
		if err == nil {
			var buf bytes.Buffer
			if err := formatter.Format(&buf, style, iterator); err == nil {
				return strings.TrimSuffix(buf.String(), "\n")
			}
		}
	}
	return styleDiff(diff)
}

func styleDiff(diff string) string {
	s := theme.Current().S()
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = s.DiffInsert.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.DiffDelete.Render(line)
		default:
			lines[i] = s.DiffContext.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

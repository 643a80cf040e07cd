package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Blend mixes two hex colors; t runs from 0 (from) to 1 (to). An
// unparsable color yields from unchanged.
func Blend(from, to string, t float64) string {
	a, err := colorful.Hex(from)
	if err != nil {
		return from
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return from
	}
	return a.BlendRgb(b, t).Clamped().Hex()
}

// Gradient colors each rune of text along a gradient from one hex color to
// another.
func Gradient(text, from, to string) string {
	runes := []rune(text)
	var sb strings.Builder
	for i, r := range runes {
		pos := 0.0
		if len(runes) > 1 {
			pos = float64(i) / float64(len(runes)-1)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(Blend(from, to, pos)))
		sb.WriteString(style.Render(string(r)))
	}
	return sb.String()
}

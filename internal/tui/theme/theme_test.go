package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// TestCatppuccinMocha_ColorPalette verifies the catppuccin_mocha color values
func TestCatppuccinMocha_ColorPalette(t *testing.T) {
	th := Current()
	if th.Name != "catppuccin-mocha" {
		t.Fatalf("expected catppuccin-mocha theme, got %s", th.Name)
	}

	// Reference: https://github.com/catppuccin/catppuccin
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Primary (Mauve)", th.Primary, "#cba6f7"},
		{"Secondary (Blue)", th.Secondary, "#89b4fa"},
		{"Tertiary (Lavender)", th.Tertiary, "#b4befe"},

		{"BgCrust", th.BgCrust, "#11111b"},
		{"BgBase", th.BgBase, "#1e1e2e"},
		{"BgMantle", th.BgMantle, "#181825"},
		{"BgSurface0", th.BgSurface0, "#313244"},
		{"BgOverlay", th.BgOverlay, "#6c7086"},

		{"FgMuted (Subtext0)", th.FgMuted, "#a6adc8"},
		{"FgBase (Text)", th.FgBase, "#cdd6f4"},

		{"Success (Green)", th.Success, "#a6e3a1"},
		{"Warning (Yellow)", th.Warning, "#f9e2af"},
		{"Error (Red)", th.Error, "#f38ba8"},

		{"DiffInsertBg", th.DiffInsertBg, "#303a30"},
		{"DiffDeleteBg", th.DiffDeleteBg, "#3a3030"},

		{"BorderFocused (Mauve)", th.BorderFocused, "#cba6f7"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.expected)
		}
	}
}

// TestCatppuccinMocha_StylesInitialized verifies the pre-built styles render.
func TestCatppuccinMocha_StylesInitialized(t *testing.T) {
	s := Current().S()
	if s != Current().S() {
		t.Fatal("styles should be built once")
	}

	tests := []struct {
		name   string
		render func() string
	}{
		{"ModalContainer", func() string { return s.ModalContainer.Render("test") }},
		{"RailCurrent", func() string { return s.RailCurrent.Render("test") }},
		{"FieldError", func() string { return s.FieldError.Render("test") }},
		{"ButtonNormal", func() string { return s.ButtonNormal.Render("test") }},
		{"ButtonFocused", func() string { return s.ButtonFocused.Render("test") }},
		{"ToastSuccess", func() string { return s.ToastSuccess.Render("test") }},
		{"DiffInsert", func() string { return s.DiffInsert.Render("test") }},
	}

	for _, tt := range tests {
		if !strings.Contains(ansi.Strip(tt.render()), "test") {
			t.Errorf("%s: text missing from render", tt.name)
		}
	}
}

func TestSetCurrent(t *testing.T) {
	orig := Current()
	t.Cleanup(func() { SetCurrent(orig) })

	custom := NewCatppuccinMocha()
	custom.Name = "custom"
	SetCurrent(custom)
	if Current().Name != "custom" {
		t.Errorf("expected custom theme, got %s", Current().Name)
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		from, to string
		pos      float64
		want     string
	}{
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#000000", "#ffffff", 0.5, "#808080"},
		{"#ff0000", "#0000ff", 0.5, "#800080"},
		{"nope", "#ffffff", 0.5, "nope"},
	}
	for _, tt := range tests {
		if got := Blend(tt.from, tt.to, tt.pos); got != tt.want {
			t.Errorf("Blend(%s, %s, %v) = %s, want %s", tt.from, tt.to, tt.pos, got, tt.want)
		}
	}
}

func TestGradient(t *testing.T) {
	if got := Gradient("", "#000000", "#ffffff"); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := ansi.Strip(Gradient("labwiz", "#cba6f7", "#89b4fa")); got != "labwiz" {
		t.Errorf("gradient changed text: %q", got)
	}
}

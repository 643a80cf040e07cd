// Package template renders the markdown summary shown on the review step of
// a wizard. Users can replace the default layout with their own file.
package template

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/wizard"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	Title   string // Form title
	Mode    string // "New record" or "Editing record"
	Record  string // " `id`" in edit mode, empty otherwise
	Fields  string // One markdown section per step
	Missing string // Fields left empty (empty if none)
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports the following variables:
// - {{title}} - Form title
// - {{mode}} - Create or edit label
// - {{record}} - Record ID in edit mode
// - {{fields}} - Entered values grouped by step
// - {{missing}} - Fields left empty
func Render(template string, vars Variables) string {
	result := template

	replacements := map[string]string{
		"{{title}}":   vars.Title,
		"{{mode}}":    vars.Mode,
		"{{record}}":  vars.Record,
		"{{fields}}":  vars.Fields,
		"{{missing}}": vars.Missing,
	}

	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// LoadFromFile loads a template from a file.
// If the file doesn't exist or can't be read, returns an error.
func LoadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(data), nil
}

// GetTemplate returns the template content.
// If customPath is non-empty, loads from that file.
// Otherwise returns the default embedded template.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultTemplate, nil
	}
	return LoadFromFile(customPath)
}

// ReviewConfig holds what a review summary is built from.
type ReviewConfig struct {
	Schema       *wizard.Schema
	Values       wizard.Reader
	Mode         wizard.Mode
	RecordID     string
	TemplatePath string // Path to custom template (optional)
}

// BuildReview renders the review summary for the current wizard values.
func BuildReview(cfg ReviewConfig) (string, error) {
	templateContent, err := GetTemplate(cfg.TemplatePath)
	if err != nil {
		logger.Error("Failed to get review template: %v", err)
		return "", fmt.Errorf("failed to get template: %w", err)
	}

	vars := Variables{
		Title:   cfg.Schema.Title,
		Mode:    "New record",
		Fields:  formatFields(cfg.Schema, cfg.Values),
		Missing: formatMissing(cfg.Schema, cfg.Values),
	}
	if cfg.Mode == wizard.ModeEdit {
		vars.Mode = "Editing record"
		vars.Record = " `" + cfg.RecordID + "`"
	}

	result := Render(templateContent, vars)
	logger.Debug("Review rendered for %s: %d characters", cfg.Schema.ID, len(result))
	return result, nil
}

// formatFields lists the non-empty values of every step except the review
// step, one section per step. Steps with nothing entered are omitted.
func formatFields(schema *wizard.Schema, r wizard.Reader) string {
	var sb strings.Builder
	for i := schema.First(); i < schema.Last(); i++ {
		step, _ := schema.Step(i)
		var lines []string
		for _, name := range step.Fields {
			v := r.Read(name)
			if v.IsEmpty() {
				continue
			}
			lines = append(lines, formatValue(schema.Label(name), v))
		}
		if len(lines) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n", step.Title))
		for _, line := range lines {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatValue(label string, v wizard.Value) string {
	switch v.Kind {
	case wizard.KindFiles:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("- **%s**:\n", label))
		for _, f := range v.Files {
			sb.WriteString(fmt.Sprintf("  - %s\n", f.Name))
		}
		return sb.String()
	case wizard.KindText:
		if strings.Contains(v.Text, "\n") {
			return fmt.Sprintf("- **%s**:\n\n  > %s\n", label, strings.ReplaceAll(strings.TrimSpace(v.Text), "\n", "\n  > "))
		}
	}
	return fmt.Sprintf("- **%s**: %s\n", label, v.String())
}

// formatMissing returns a section listing empty fields, or "" when every
// field has a value.
func formatMissing(schema *wizard.Schema, r wizard.Reader) string {
	var missing []string
	for _, f := range schema.Fields {
		if r.Read(f.Name).IsEmpty() {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "## Not filled in\n" + strings.Join(missing, ", ") + "\n"
}

// FormatTimeAgo formats a duration into a human-readable "time ago" string.
func FormatTimeAgo(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	} else if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1min ago"
		}
		return fmt.Sprintf("%dmin ago", mins)
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1hr ago"
		}
		return fmt.Sprintf("%dhr ago", hours)
	} else {
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

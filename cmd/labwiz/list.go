package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/mark3labs/labwiz/internal/app"
	"github.com/mark3labs/labwiz/internal/forms"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/template"
	"github.com/mark3labs/labwiz/internal/tui/theme"
	"github.com/mark3labs/labwiz/internal/wizard"
)

// listColumns is how many field columns the record table shows.
const listColumns = 3

var listCmd = &cobra.Command{
	Use:   "list <form>",
	Short: "List submitted records of a form",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := startApp()
	if err != nil {
		return err
	}
	defer stopApp(a)

	form, err := a.Forms().Get(args[0])
	if err != nil {
		return err
	}
	return printRecords(a.Context(), a, form)
}

func printRecords(ctx context.Context, a *app.App, form *forms.Form) error {
	recs, err := a.Records().ListRecords(ctx, form.Schema.ID)
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}
	now := time.Now()
	if len(recs) == 0 {
		fmt.Printf("No %s records yet. Run 'labwiz new %s' to add one.\n", form.Schema.Title, form.Schema.ID)
	} else {
		fmt.Println(renderRecords(form.Schema, recs, now))
	}

	drafts, err := a.Drafts().ListDrafts(ctx, form.Schema.ID)
	if err != nil {
		logger.Warn("Listing %s drafts failed: %v", form.Schema.ID, err)
		return nil
	}
	for _, line := range draftHints(form.Schema.ID, drafts, now) {
		fmt.Println(line)
	}
	return nil
}

// draftHints tells the user how to resume each unsubmitted draft.
func draftHints(form string, drafts []wizard.Draft, now time.Time) []string {
	lines := make([]string, 0, len(drafts))
	for _, d := range drafts {
		age := template.FormatTimeAgo(now.Sub(d.SavedAt))
		if d.RecordID == "" {
			lines = append(lines, fmt.Sprintf("Unsaved new record (draft %s): labwiz new %s --resume", age, form))
		} else {
			lines = append(lines, fmt.Sprintf("Unsaved edit of %s (draft %s): labwiz edit %s %s --resume", d.RecordID, age, form, d.RecordID))
		}
	}
	return lines
}

// renderRecords draws recs as a table: ID, the first few fields, version
// and age.
func renderRecords(schema *wizard.Schema, recs []*records.Record, now time.Time) string {
	t := theme.Current()

	var fields []wizard.Field
	for _, f := range schema.Fields {
		if f.Kind == wizard.KindFiles || f.Multiline {
			continue
		}
		fields = append(fields, f)
		if len(fields) == listColumns {
			break
		}
	}

	headers := []string{"ID"}
	for _, f := range fields {
		headers = append(headers, f.Label)
	}
	headers = append(headers, "Ver", "Updated")

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		row := []string{r.ID}
		for _, f := range fields {
			row = append(row, truncate(r.Values[f.Name].String(), 28))
		}
		row = append(row,
			fmt.Sprintf("%d", r.Version),
			template.FormatTimeAgo(now.Sub(r.UpdatedAt)),
		)
		rows = append(rows, row)
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Primary)).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)).Padding(0, 1)
	muted := cell.Foreground(lipgloss.Color(t.FgMuted))

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.BorderMuted))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0 || col >= len(headers)-2:
				return muted
			default:
				return cell
			}
		})

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Secondary)).
		Render(fmt.Sprintf("%s records (%d)", schema.Title, len(recs)))
	return title + "\n" + tbl.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

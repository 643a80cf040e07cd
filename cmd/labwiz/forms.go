package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/labwiz/internal/forms"
	"github.com/mark3labs/labwiz/internal/state"
	"github.com/mark3labs/labwiz/internal/template"
)

var formsFlags struct {
	check []string
}

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List available forms or check form definitions",
	Long: `List the forms labwiz can open: the built-in ones plus any found in
schema_dir.

With --check, lint form definition files instead. Each file is validated
against the form schema and then compiled, so unknown fields, bad rules and
a review step with requirements are all reported.`,
	Args: cobra.NoArgs,
	RunE: runForms,
}

func init() {
	formsCmd.Flags().StringSliceVarP(&formsFlags.check, "check", "c", nil, "Form definition files to check")
}

func runForms(cmd *cobra.Command, args []string) error {
	if len(formsFlags.check) > 0 {
		return checkForms(cmd.OutOrStdout(), formsFlags.check)
	}

	reg, err := forms.Builtin()
	if err != nil {
		return err
	}
	if err := reg.LoadDir(cfg.SchemaDir); err != nil {
		return err
	}
	ui := state.Load(cfg.DataDir)
	out := cmd.OutOrStdout()
	now := time.Now()
	for _, f := range reg.List() {
		line := fmt.Sprintf("%-16s %-22s %d steps  %s", f.Schema.ID, f.Schema.Title, f.Schema.Len(), f.Description)
		if used, ok := ui.Used(f.Schema.ID); ok {
			line += "  (used " + template.FormatTimeAgo(now.Sub(used.UsedAt)) + ")"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// checkForms lints each file and reports every problem before failing.
func checkForms(out io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		problems, err := checkForm(path)
		if err != nil {
			problems = append(problems, err.Error())
		}
		if len(problems) == 0 {
			fmt.Fprintf(out, "✓ %s\n", path)
			continue
		}
		failed++
		fmt.Fprintf(out, "✗ %s\n", path)
		for _, p := range problems {
			fmt.Fprintf(out, "    %s\n", p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d form definition(s) have problems", failed, len(paths))
	}
	return nil
}

func checkForm(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	problems, err := forms.Lint(data)
	if err != nil || len(problems) > 0 {
		return problems, err
	}
	if _, err := forms.NewRegistry().Load(path, data); err != nil {
		return nil, err
	}
	return nil, nil
}

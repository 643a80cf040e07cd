package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/labwiz/internal/app"
	"github.com/mark3labs/labwiz/internal/hooks"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/state"
	tuiwizard "github.com/mark3labs/labwiz/internal/tui/wizard"
	"github.com/mark3labs/labwiz/internal/wizard"
)

var newFlags struct {
	resume bool
}

var newCmd = &cobra.Command{
	Use:   "new [form]",
	Short: "Create a record with a step-by-step wizard",
	Long: `Create a record with a step-by-step wizard.

Without a form argument the most recently used form is opened. Use
--resume to continue from the draft saved with ctrl+s.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

var editFlags struct {
	resume bool
}

var editCmd = &cobra.Command{
	Use:   "edit <form> <record-id>",
	Short: "Edit an existing record",
	Long: `Edit an existing record. Every step starts completed, so you can jump
straight to the one you want to change. The review step shows what changed.`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func init() {
	newCmd.Flags().BoolVarP(&newFlags.resume, "resume", "r", false, "Continue from the saved draft")
	editCmd.Flags().BoolVarP(&editFlags.resume, "resume", "r", false, "Continue from the saved draft for this record")
}

func runNew(cmd *cobra.Command, args []string) error {
	form := ""
	if len(args) == 1 {
		form = args[0]
	}
	return runWizard(form, "", newFlags.resume)
}

func runEdit(cmd *cobra.Command, args []string) error {
	return runWizard(args[0], args[1], editFlags.resume)
}

// runWizard runs the interactive wizard for one form until the user leaves.
// An empty formID reopens the most recently used form.
func runWizard(formID, recordID string, resume bool) error {
	a, err := startApp()
	if err != nil {
		return err
	}
	defer stopApp(a)

	ui := state.Load(cfg.DataDir)
	ui.Forget(func(id string) bool {
		_, err := a.Forms().Get(id)
		return err == nil
	})
	if formID == "" {
		if formID = ui.LastForm(); formID == "" {
			return fmt.Errorf("no form given and none used before\n\nRun 'labwiz forms' to see what is available")
		}
	}

	form, err := a.Forms().Get(formID)
	if err != nil {
		return err
	}
	id := form.Schema.ID

	ctx := a.Context()
	initial, err := a.Mount(ctx, form, recordID, resume)
	if errors.Is(err, app.ErrNoDraft) {
		return fmt.Errorf("%w\n\nStart without --resume to begin a new record", err)
	}
	if err != nil {
		return err
	}

	var opts []wizard.Option
	if initial != nil {
		opts = append(opts, wizard.WithInitialData(*initial))
	}
	w, err := wizard.New(form.Schema, opts...)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	hookCfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		return err
	}

	tuiOpts := tuiwizard.Options{
		Drafts:         a.Drafts(),
		NotifyInvalid:  cfg.ToastOnInvalid,
		ReviewTemplate: cfg.ReviewTemplate,
		SubmitTimeout:  cfg.SubmitDeadline(),
		Hooks:          hooks.NewRunner(hookCfg, workDir),
		ShowDiff:       ui.Review.ShowDiff,
	}
	if recordID != "" {
		if rec, err := a.Records().GetRecord(ctx, id, recordID); err == nil {
			tuiOpts.Original = rec.Values
		}
	}

	res, err := tuiwizard.Run(tuiwizard.New(w, a.Records(), tuiOpts))
	if err != nil {
		return err
	}

	if len(res.Submitted) > 0 {
		// The draft this session started from, if any, is now stale.
		if err := a.Drafts().DeleteDraft(context.WithoutCancel(ctx), id, recordID); err != nil {
			logger.Warn("Removing %s draft failed: %v", id, err)
		}
	}

	ui.Touch(id, len(res.Submitted), time.Now())
	ui.Review.ShowDiff = res.ShowDiff
	if err := state.Save(cfg.DataDir, ui); err != nil {
		logger.Warn("Saving UI state failed: %v", err)
	}

	for _, r := range res.Submitted {
		fmt.Printf("Saved %s record %s\n", form.Schema.Title, r.ID)
	}
	if res.Exit == tuiwizard.ExitList {
		fmt.Println()
		return printRecords(ctx, a, form)
	}
	return nil
}

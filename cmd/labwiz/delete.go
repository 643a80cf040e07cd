package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <form> <record-id>",
	Short: "Delete a submitted record",
	Long: `Delete a record from the live list. Its history stays in the event log,
and any draft saved while editing it is removed as well.`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := startApp()
	if err != nil {
		return err
	}
	defer stopApp(a)

	form, err := a.Forms().Get(args[0])
	if err != nil {
		return err
	}
	ctx, id := a.Context(), form.Schema.ID
	if err := a.Records().DeleteRecord(ctx, id, args[1]); err != nil {
		return err
	}
	if err := a.Drafts().DeleteDraft(ctx, id, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s record %s\n", form.Schema.Title, args[1])
	return nil
}

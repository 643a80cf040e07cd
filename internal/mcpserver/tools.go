package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session", mcp.Required(),
		mcp.Description("Session ID returned by wizard-start"),
	)
}

// registerTools registers the wizard tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("form-list",
			mcp.WithDescription("List the record forms a wizard can be started for"),
		),
		s.handleFormList,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-start",
			mcp.WithDescription("Open a wizard session for a form. Pass record_id to edit an existing record and resume to continue from a saved draft"),
			mcp.WithString("form", mcp.Required(),
				mcp.Description("Form ID, e.g. patent or reagent"),
			),
			mcp.WithString("record_id",
				mcp.Description("Existing record to edit"),
			),
			mcp.WithBoolean("resume",
				mcp.Description("Load the saved draft for this form and record"),
			),
		),
		s.handleWizardStart,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-state",
			mcp.WithDescription("Show the current step, its fields and errors, and pending notices"),
			sessionParam(),
		),
		s.handleWizardState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("field-set",
			mcp.WithDescription("Set one or more field values. Lists may be arrays or comma separated strings"),
			sessionParam(),
			mcp.WithObject("values", mcp.Required(),
				mcp.Description("Map of field name to value"),
			),
		),
		s.handleFieldSet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("step-validate",
			mcp.WithDescription("Validate a step without moving. Defaults to the current step"),
			sessionParam(),
			mcp.WithNumber("step",
				mcp.Description("Step index to validate"),
			),
		),
		s.handleStepValidate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("step-next",
			mcp.WithDescription("Validate the current step and advance when it passes"),
			sessionParam(),
		),
		s.handleStepNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("step-previous",
			mcp.WithDescription("Go back one step without validating"),
			sessionParam(),
		),
		s.handleStepPrevious,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("step-goto",
			mcp.WithDescription("Jump to an earlier or completed step"),
			sessionParam(),
			mcp.WithNumber("step", mcp.Required(),
				mcp.Description("Target step index"),
			),
		),
		s.handleStepGoto,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-submit",
			mcp.WithDescription("Submit the record. Only available on the review step"),
			sessionParam(),
		),
		s.handleWizardSubmit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-reset",
			mcp.WithDescription("Clear the session and start a new blank record"),
			sessionParam(),
		),
		s.handleWizardReset,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("draft-save",
			mcp.WithDescription("Save the session as a draft that can be resumed later"),
			sessionParam(),
		),
		s.handleDraftSave,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("record-list",
			mcp.WithDescription("List submitted records of a form"),
			mcp.WithString("form", mcp.Required(),
				mcp.Description("Form ID"),
			),
		),
		s.handleRecordList,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-close",
			mcp.WithDescription("Close a session. destination is list (after submitting) or back (discard)"),
			sessionParam(),
			mcp.WithString("destination",
				mcp.Description("list or back (default back)"),
				mcp.Enum(exitList, exitBack),
			),
		),
		s.handleWizardClose,
	)
}

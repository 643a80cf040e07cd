package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/labwiz/internal/app"
	"github.com/mark3labs/labwiz/internal/config"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/tui/theme"
)

const (
	logoText1 = "█   ▄▀█ █▄▄ █ █ █ █ ▀█"
	logoText2 = "█▄▄ █▀█ █▄█ ▀▄▀▄▀ █ █▄"
)

// Version set via ldflags during build
var version = "dev"

// cfg is loaded before any command runs.
var cfg *config.Config

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "labwiz",
	Short:             "Step-by-step wizards for research management records",
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.Gradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.Gradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

labwiz walks you through creating and editing research management records
(patents, journal levels, ethics reviews, animal lab records, reagents) one
validated step at a time. Records are stored in an embedded NATS JetStream
event log; drafts can be saved and resumed later.

Forms are YAML definitions. Add your own with schema_dir.`

	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", ".labwiz", "Data directory for record storage")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Write logs to this file")
	flags.String("schema-dir", "", "Directory with extra form definitions")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
}

// loadConfig resolves configuration for the running command and configures
// logging from it.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.Configure(c.LogLevel, c.LogFile); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	cfg = c
	if !config.Exists() {
		logger.Debug("No config file found; using defaults, environment and flags")
	}
	logger.Debug("Config loaded: data_dir=%s schema_dir=%s", c.DataDir, c.SchemaDir)
	return nil
}

// startApp starts the shared runtime. Callers must Stop it.
func startApp() (*app.App, error) {
	a := app.New(app.Config{DataDir: cfg.DataDir, SchemaDir: cfg.SchemaDir})
	if err := a.Start(); err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	return a, nil
}

func stopApp(a *app.App) {
	if err := a.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}
}

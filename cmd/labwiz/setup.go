package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mark3labs/labwiz/internal/config"
	"github.com/mark3labs/labwiz/internal/hooks"
)

var setupFlags struct {
	project bool
	force   bool
	hooks   bool
}

// sampleHooks is written by setup --hooks.
const sampleHooks = `version: 1
hooks:
  post_submit:
    # The saved record arrives on stdin as JSON; fields are also exported
    # as LABWIZ_FIELD_<NAME>.
    - command: echo "saved {{form}} {{record}} ({{mode}})"
      timeout: 10
      pipe_output: true
    # - command: ./notify-safety-officer.sh "$LABWIZ_FIELD_HAZARD_CLASS"
    #   forms: [reagent]
`

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create labwiz configuration file",
	Long: `Create a labwiz configuration file with the current settings.

By default, creates a global config at ~/.config/labwiz/labwiz.yml.
Use --project to create a project-local config in the current directory,
and --hooks to also add a sample ` + hooks.ConfigFileName + ` next to it.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing files")
	setupCmd.Flags().BoolVar(&setupFlags.hooks, "hooks", false, "Also write a sample post-submit hooks file in the current directory")
}

func runSetup(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path := config.GlobalPath()
	write := config.WriteGlobal
	if setupFlags.project {
		path, write = config.ProjectPath(), config.WriteProject
	}
	if !setupFlags.force && fileExists(path) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", path)
	}
	// cfg already merges defaults, environment and flags, so this also
	// saves whatever was passed on the command line.
	if err := write(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(out, "Config written to: %s\n", path)

	if setupFlags.hooks {
		hooksPath, err := writeSampleHooks(setupFlags.force)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Hooks written to: %s\n", hooksPath)
	}

	fmt.Fprintln(out, "\nRun 'labwiz forms' to see what you can create.")
	return nil
}

func writeSampleHooks(force bool) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path := filepath.Join(wd, hooks.ConfigFileName)
	if !force && fileExists(path) {
		return "", fmt.Errorf("hooks file already exists at %s\n\nUse --force to overwrite", path)
	}
	if err := os.WriteFile(path, []byte(sampleHooks), 0644); err != nil {
		return "", fmt.Errorf("failed to write hooks: %w", err)
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/labwiz/internal/mcpserver"
)

var serveFlags struct {
	port int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve headless wizard sessions over MCP",
	Long: `Start an MCP server (streamable HTTP on 127.0.0.1) exposing wizard
sessions as tools, so agents and scripts can create and edit records with
the same step rules as the terminal wizard.

The port defaults to mcp_port from the config, or a random free port.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "Port to listen on (0 = config or random)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := serveFlags.port
	if !cmd.Flags().Changed("port") {
		port = cfg.MCPPort
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	a, err := startApp()
	if err != nil {
		return err
	}
	defer stopApp(a)

	srv := mcpserver.New(a.Forms(), a.Records(), a.Drafts())
	srv.NotifyInvalid = cfg.ToastOnInvalid
	if _, err := srv.Start(a.Context(), port); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping MCP server: %v\n", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\nPress Ctrl+C to stop.\n", srv.URL())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	<-sigChan
	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	return nil
}

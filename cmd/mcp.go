package cmd

import (
	"fmt"

	"leakctl/internal/config"
	"leakctl/internal/mcpserver"
	"leakctl/pkg/logging"

	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp [suite files or directories...]",
		Short: "Serve leak detection tools over MCP (stdio transport)",
		Long: `Runs an MCP server on stdin and stdout that exposes two tools:

- leak_list_tests: list the tests of the loaded suites
- leak_run_suite:  run them with a leak detection strategy and return the
                   leaked owners per test

Configure it in your AI assistant's MCP settings with the command
"leakctl mcp". Logs are written to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			// stdout carries the protocol
			logging.InitForCLI(level, cmd.ErrOrStderr())

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			suites, err := loadSuites(args, cfg.Suites)
			if err != nil {
				return err
			}

			server := mcpserver.New(suites, cfg, rootCmd.Version)
			if err := server.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

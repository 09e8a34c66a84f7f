package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"leakctl/internal/config"
	"leakctl/internal/suite"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		module string
		test   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list [suite files or directories...]",
		Short: "List the tests of the given suites",
		Long: `List prints every test of the given suites, or of the configured or
built-in suites when no argument is given, with the id leak reports use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			suites, err := loadSuites(args, cfg.Suites)
			if err != nil {
				return err
			}
			suites, err = suite.Filter(suites, module, test)
			if err != nil {
				return err
			}

			tests := suite.List(suites)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tests)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.Style().Color.Header = text.Colors{text.FgHiCyan, text.Bold}
			t.AppendHeader(table.Row{"SUITE", "MODULE", "TEST", "STEPS", "TAGS"})
			for _, info := range tests {
				t.AppendRow(table.Row{info.Suite, info.Module, info.Name, info.Steps, strings.Join(info.Tags, ",")})
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "%d test(s)\n", len(tests))
			return nil
		},
	}

	cmd.Flags().StringVar(&module, "module", "", "Only list modules whose name contains this text")
	cmd.Flags().StringVar(&test, "test", "", "Only list tests whose name contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tests as JSON")
	return cmd
}

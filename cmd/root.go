package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leakctl",
	Short: "Detect application and engine owners that outlive their tests",
	Long: `leakctl runs component test suites against freshly booted applications
and checks, after forcing garbage collection, that every application and
engine instance created by a test has been released.

Leaked owners are reported as failures of the test that created them
(per-test) or as a synthesized "[OWNER LEAK DETECTED]" module appended to
the run (per-module, after-all).`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed tests, invalid suites)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "leakctl version %s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

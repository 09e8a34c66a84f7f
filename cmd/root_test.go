package cmd

import (
	"bytes"
	"testing"

	"leakctl/internal/config"
	"leakctl/internal/leakcheck"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withVersion sets the root command version for the duration of the test.
func withVersion(t *testing.T, v string) {
	t.Helper()
	original := rootCmd.Version
	SetVersion(v)
	t.Cleanup(func() { SetVersion(original) })
}

func TestVersionCommand(t *testing.T) {
	withVersion(t, "1.2.3-test")

	var buf bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "leakctl version 1.2.3-test\n", buf.String())
}

func TestRootCommand_VersionFlag(t *testing.T) {
	withVersion(t, "0.4.0")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "leakctl version 0.4.0\n", buf.String())
}

func TestRootCommand_Subcommands(t *testing.T) {
	for _, name := range []string{"run", "list", "mcp", "version", "self-update"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRunCommand_Flags(t *testing.T) {
	cmd := newRunCmd()
	for _, name := range []string{
		"strategy", "gc-passes", "output", "report", "metrics-file", "tui",
		"verbose", "debug", "fail-fast", "disable", "require-assertions", "module", "test",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}

func TestRunCommand_TUIAndOutputExclusive(t *testing.T) {
	isolateConfig(t)

	_, err := executeRun(t, "--tui", "--output=json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[tui output]")
}

func TestCompleteStrategyFlag(t *testing.T) {
	names, directive := completeStrategyFlag(newRunCmd(), nil, "")

	var want []string
	for _, s := range leakcheck.Strategies() {
		want = append(want, string(s))
	}
	assert.Equal(t, want, names)
	assert.Contains(t, names, "after-all")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestCompleteOutputFlag(t *testing.T) {
	names, directive := completeOutputFlag(newRunCmd(), nil, "")
	assert.Equal(t, []string{config.OutputText, config.OutputQuiet, config.OutputJSON}, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

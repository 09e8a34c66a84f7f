package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"leakctl/internal/suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeList(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newListCmd()
	// As on the root command.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand_Table(t *testing.T) {
	isolateConfig(t)

	output, err := executeList(t)
	require.NoError(t, err)
	assert.Contains(t, output, "MODULE")
	assert.Contains(t, output, "Integration | Component | leaking-component")
	assert.Contains(t, output, "it mounts a second engine")
	assert.Contains(t, output, "3 test(s)")
}

func TestListCommand_JSONFiltered(t *testing.T) {
	isolateConfig(t)

	output, err := executeList(t, "--json", "--test=second engine")
	require.NoError(t, err)

	var tests []suite.TestInfo
	require.NoError(t, json.Unmarshal([]byte(output), &tests))
	require.Len(t, tests, 1)
	assert.Equal(t, "Integration | Component | clean-component: it mounts a second engine", tests[0].ID)
	assert.Equal(t, []string{"engines"}, tests[0].Tags)
}

func TestMCPCommand(t *testing.T) {
	cmd := newMCPCmd()
	assert.Equal(t, "mcp [suite files or directories...]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
}

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func findCommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find([]string{name})
	require.NoError(t, err)
	require.Equal(t, name, cmd.Name())
	return cmd
}

func TestSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"sleep", "wake", "probe", "name"} {
		findCommand(t, root, name)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "name", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestInvalidNamespace(t *testing.T) {
	_, err := execute(t, "name", "--namespace", "session")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--namespace")
}

func TestNameCommand(t *testing.T) {
	out, err := execute(t, "name", "evt")
	require.NoError(t, err)

	got := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(got, "evt-"), got)
	_, err = uuid.Parse(strings.TrimPrefix(got, "evt-"))
	assert.NoError(t, err)

	out, err = execute(t, "name")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "xpevent-"))
}

func TestNameFlagDefaults(t *testing.T) {
	t.Setenv(EnvName, "")
	sleep := findCommand(t, NewRootCommand(), "sleep")
	assert.Equal(t, DefaultName, sleep.Flags().Lookup("name").DefValue)

	t.Setenv(EnvName, "from-env")
	for _, name := range []string{"sleep", "wake", "probe"} {
		cmd := findCommand(t, NewRootCommand(), name)
		assert.Equal(t, "from-env", cmd.Flags().Lookup("name").DefValue, name)
	}
}

func TestArgumentValidation(t *testing.T) {
	_, err := execute(t, "wake", "--repeat", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--repeat")

	_, err = execute(t, "sleep", "--count", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count")

	_, err = execute(t, "wake", "extra")
	assert.Error(t, err)
}

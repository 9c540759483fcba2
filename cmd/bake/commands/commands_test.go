package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trinio-labs/bake/cmd/bake/commands"
)

func TestCLI_Help(t *testing.T) {
	cli := commands.New(nil)
	cli.SetArgs([]string{"--help"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestCLI_Version(t *testing.T) {
	cli := commands.New(nil)
	cli.SetArgs([]string{"version"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestCLI_RunWithoutTargetsShowsHelp(t *testing.T) {
	// No targets prints usage instead of failing the invocation.
	cli := commands.New(nil)
	cli.SetArgs([]string{"run"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestCLI_UnknownCommand(t *testing.T) {
	cli := commands.New(nil)
	cli.SetArgs([]string{"bogus"})
	require.Error(t, cli.Execute(context.Background()))
}

package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/testbridge/cli"
)

func execute(args ...string) (string, error) {
	cmd := cli.RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Run("Should expose serve, migrate, and version commands", func(t *testing.T) {
		cmd := cli.RootCmd()
		names := map[string]bool{}
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		assert.True(t, names["serve"])
		assert.True(t, names["migrate"])
		assert.True(t, names["version"])
	})
	t.Run("Should print build information", func(t *testing.T) {
		out, err := execute("version")
		require.NoError(t, err)
		assert.Contains(t, out, "testbridge")
	})
}

func TestMigrateCmd(t *testing.T) {
	t.Run("Should run an empty migration to completion", func(t *testing.T) {
		out, err := execute("migrate",
			"--source", "zephyr",
			"--target", "qtest",
			"--project", "DEMO",
			"--source-url", "https://zephyr.example.com",
			"--source-token", "t",
			"--target-url", "https://qtest.example.com",
			"--target-token", "t",
		)
		require.NoError(t, err)
		assert.Contains(t, out, "COMPLETED")
	})
	t.Run("Should fail when the source system is missing", func(t *testing.T) {
		out, err := execute("migrate",
			"--target", "qtest",
			"--project", "DEMO",
			"--source-url", "https://zephyr.example.com",
			"--source-token", "t",
			"--target-url", "https://qtest.example.com",
			"--target-token", "t",
		)
		require.Error(t, err)
		assert.Contains(t, out, "FAILED")
	})
}

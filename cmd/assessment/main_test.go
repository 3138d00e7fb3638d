package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/assessment/internal/cmd"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	rootCmd := cmd.NewRootCommand()

	for _, name := range []string{"validate", "list", "evaluate", "theme", "export", "serve"} {
		found, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestRootCommandHelp(t *testing.T) {
	rootCmd := cmd.NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--help"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "loads questionnaire definitions")
}

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd("1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "sparqlassist 1.2.3")
}

func TestRootListsSubcommands(t *testing.T) {
	root := NewRootCmd("dev")
	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"ask", "validate", "schema", "endpoints", "index", "serve", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

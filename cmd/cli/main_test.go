package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"whoami", "profile", "docs", "upload", "search", "attempts", "quizstats", "progress", "goals", "sessions", "mock-server", "version"} {
		assert.True(t, names[want], want)
	}

	for _, flag := range []string{"config", "api-url", "data-dir", "timeout", "interval", "log-level", "env"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Build version:")
}

func TestUploadRequiresPath(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"upload"})

	assert.Error(t, root.Execute())
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_Levels_WriteExpectedOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "prod")
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	tests := []struct {
		level string
		msg   string
		key   string
		val   float64
	}{
		{"debug", "dbg", "a", 1},
		{"info", "inf", "b", 2},
		{"warn", "wrn", "c", 3},
		{"error", "err", "d", 4},
	}
	for i, tc := range tests {
		assert.Equal(t, tc.level, lines[i]["level"])
		assert.Equal(t, tc.msg, lines[i]["message"])
		assert.Equal(t, tc.val, lines[i][tc.key])
	}
}

func TestZerologLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "prod")

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestZerologLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "chatty", "prod")

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestZerologLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "prod").With("req_id", "123", "user", "alice")
	log.Info(context.Background(), "hello", "k", "v")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "123", lines[0]["req_id"])
	assert.Equal(t, "alice", lines[0]["user"])
	assert.Equal(t, "v", lines[0]["k"])
}

func TestZerologLogger_ConsoleOutsideProd(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "dev").Info(context.Background(), "pretty", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "pretty")
	assert.False(t, strings.HasPrefix(out, "{"), "console output must not be JSON")
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	ctx := context.TODO()
	assert.NotPanics(t, func() {
		log.Info(ctx, "x")
		log.With("a", 1).Error(ctx, "y")
	})
}

func TestZerologLogger_ExtraWriters(t *testing.T) {
	var main, extra bytes.Buffer
	New(&main, "info", "prod", &extra).Warn(context.Background(), "twice")

	assert.Len(t, decodeLines(t, &main), 1)
	assert.Len(t, decodeLines(t, &extra), 1)
}

func TestNewSentryWriter_DisabledWithoutDSN(t *testing.T) {
	w, err := NewSentryWriter("", "prod", "dev")
	require.NoError(t, err)
	assert.Nil(t, w)
}

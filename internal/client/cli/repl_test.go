package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	lines   []string
	notices []string
	quitOn  string
}

func (f *fakeDispatcher) dispatch(_ context.Context, line string) error {
	f.lines = append(f.lines, line)
	if line == f.quitOn {
		return errQuit
	}
	return nil
}

func (f *fakeDispatcher) prompt() string { return "> " }

func (f *fakeDispatcher) takeNotice() string {
	if len(f.notices) == 0 {
		return ""
	}
	n := f.notices[0]
	f.notices = f.notices[1:]
	return n
}

func TestRunREPL_DispatchesUntilQuit(t *testing.T) {
	d := &fakeDispatcher{quitOn: "exit"}
	var out bytes.Buffer

	runREPL(context.Background(), d, bufio.NewReader(strings.NewReader("docs\n  goals  \nexit\nnever\n")), &out)

	assert.Equal(t, []string{"docs", "goals", "exit"}, d.lines)
	assert.Equal(t, 3, strings.Count(out.String(), "> "))
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	d := &fakeDispatcher{}
	var out bytes.Buffer

	runREPL(context.Background(), d, bufio.NewReader(strings.NewReader("docs\nwhoami")), &out)

	assert.Equal(t, []string{"docs", "whoami"}, d.lines)
}

func TestRunREPL_PrintsNoticeBeforePrompt(t *testing.T) {
	d := &fakeDispatcher{notices: []string{"Your session has expired. Please log in again."}}
	var out bytes.Buffer

	runREPL(context.Background(), d, bufio.NewReader(strings.NewReader("")), &out)

	assert.True(t, strings.HasPrefix(out.String(), "Your session has expired. Please log in again.\n> "))
	assert.Empty(t, d.lines)
}

func TestRunREPL_CancelledContext(t *testing.T) {
	d := &fakeDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	runREPL(ctx, d, bufio.NewReader(strings.NewReader("docs\n")), &out)

	assert.Empty(t, d.lines)
	assert.Empty(t, out.String())
}

func TestStart_LandsOnLoginWithoutSession(t *testing.T) {
	h := newHarness(t, "")

	h.app.start(context.Background())

	assert.Contains(t, h.out.String(), "Checking authentication...")
	assert.Contains(t, h.out.String(), "You are not signed in.")
	assert.Equal(t, "/login", h.app.Route())
	assert.Equal(t, ModeOnline, h.app.Mode())
}

func TestStart_StoredInvalidTokenLeavesNoNotice(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	require.NoError(t, h.store.SaveLogin(ctx, h.user, "not-a-valid-token"))

	h.app.start(ctx)

	assert.Empty(t, h.app.takeNotice())
	assert.Contains(t, h.out.String(), "You are not signed in.")
	assert.NotContains(t, h.out.String(), "expired")
	assert.Equal(t, "/login", h.app.Route())
}

func TestExec_StoredInvalidTokenLeavesNoNotice(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	require.NoError(t, h.store.SaveLogin(ctx, h.user, "not-a-valid-token"))

	err := h.app.Exec(ctx, "whoami")

	require.Error(t, err)
	assert.Empty(t, h.app.takeNotice())
}

func TestRun_ExitsOnQuit(t *testing.T) {
	h := newHarness(t, "help\nquit\n")

	h.app.Run(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "Welcome to pdflearn")
	assert.Contains(t, out, "Available commands:")
	assert.Contains(t, out, "Bye!")
	assert.Contains(t, out, "pdflearn (online) /login> ")
}

package cli

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/pdflearn/internal/client/client"
	"github.com/dmitrijs2005/pdflearn/internal/client/config"
	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
	"github.com/dmitrijs2005/pdflearn/internal/client/session"
	"github.com/dmitrijs2005/pdflearn/internal/common"
	"github.com/dmitrijs2005/pdflearn/internal/cryptox"
	"github.com/dmitrijs2005/pdflearn/internal/fakeapi"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
)

const (
	testUser     = "alice"
	testPassword = "secret123"
)

type harness struct {
	api   *fakeapi.Server
	srv   *httptest.Server
	user  models.User
	url   string
	store *session.Store
	app   *App
	out   *bytes.Buffer
}

// newHarness builds an App talking to an in-memory API over HTTP, with the
// session kept in an in-memory SQLite database. input feeds every prompt.
func newHarness(t *testing.T, input string, opts ...fakeapi.Option) *harness {
	t.Helper()

	api := fakeapi.New(append([]fakeapi.Option{fakeapi.WithBcryptCost(bcrypt.MinCost)}, opts...)...)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, client.RunMigrations(context.Background(), db))

	sealer, err := cryptox.NewSealer(common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)

	log := logging.Nop()
	store := session.NewStore(db, sealer, log)

	hc, err := client.NewHTTPClient(srv.URL+"/api", store, client.WithTimeout(5*time.Second))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIURL = srv.URL + "/api"

	out := &bytes.Buffer{}
	sc := services.NewSessionController(client.NewAuthAPI(hc), store, log)
	docs := client.NewDocumentsAPI(hc)
	app := newApp(appParams{
		Config:    cfg,
		Terminal:  Terminal{In: strings.NewReader(input), Out: out},
		Log:       log,
		HTTP:      hc,
		Session:   sc,
		Uploads:   services.NewDocumentService(docs, log),
		Documents: docs,
		Quizzes:   client.NewQuizzesAPI(hc),
		Progress:  client.NewProgressAPI(hc),
	})
	t.Cleanup(app.Close)

	user, err := api.CreateUser(testUser, testPassword)
	require.NoError(t, err)

	return &harness{api: api, srv: srv, user: user, url: srv.URL, store: store, app: app, out: out}
}

// stubPasswords answers password prompts in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	h.app.session.CheckSession(ctx)
	stubPasswords(t, testPassword)
	require.NoError(t, h.app.dispatch(ctx, "login"))
	require.True(t, h.app.session.State().IsAuthenticated, h.out.String())
	h.out.Reset()
}

func TestGuardsBeforeLogin(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	h.app.session.CheckSession(ctx)

	require.NoError(t, h.app.dispatch(ctx, "docs"))

	assert.Contains(t, h.out.String(), "Please log in first (type 'login' or 'register').")
	assert.Equal(t, common.RouteLogin, h.app.Route())
}

func TestLoginThenPublicPageRedirectsHome(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)

	assert.Equal(t, common.RouteHome, h.app.Route())

	require.NoError(t, h.app.dispatch(context.Background(), "login"))
	assert.Contains(t, h.out.String(), "You are already logged in.")
	assert.Equal(t, common.RouteHome, h.app.Route())
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	ctx := context.Background()
	h.app.session.CheckSession(ctx)
	stubPasswords(t, "wrong-password")

	require.NoError(t, h.app.dispatch(ctx, "login"))

	assert.False(t, h.app.session.State().IsAuthenticated)
	assert.Contains(t, h.out.String(), "Invalid credentials")
	assert.NotContains(t, h.out.String(), "Welcome back")
}

func TestHelpListsOnlyReachableCommands(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	h.app.session.CheckSession(ctx)

	require.NoError(t, h.app.dispatch(ctx, "help"))
	out := h.out.String()
	assert.Contains(t, out, "login")
	assert.NotContains(t, out, "upload <path>")
}

func TestDocumentsListAndEmptyState(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "docs"))
	assert.Contains(t, h.out.String(), "No documents yet.")

	_, err := h.api.AddDocument(testUser, "Biology", "cells divide by mitosis", true)
	require.NoError(t, err)
	h.out.Reset()

	require.NoError(t, h.app.dispatch(ctx, "docs"))
	assert.Contains(t, h.out.String(), "Biology")
	assert.Contains(t, h.out.String(), "processed")
	assert.Len(t, h.app.page().documents.State().Data, 1)
}

func TestUploadValidatesAndRefreshes(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)
	ctx := context.Background()
	dir := t.TempDir()

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain text"), 0o600))
	require.NoError(t, h.app.dispatch(ctx, "upload "+txt))
	assert.Contains(t, h.out.String(), "Please upload only PDF files")
	assert.Empty(t, h.app.page().documents.State().Data)

	h.out.Reset()
	pdf := filepath.Join(dir, "chapter.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\nsome readable text\n%%EOF"), 0o600))
	require.NoError(t, h.app.dispatch(ctx, "upload "+pdf))
	assert.Contains(t, h.out.String(), `Uploaded "chapter.pdf"`)
	assert.Len(t, h.app.page().documents.State().Data, 1)
}

func TestTakeQuizWithoutProcessedDocuments(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)

	require.NoError(t, h.app.dispatch(context.Background(), "quiz"))
	assert.Contains(t, h.out.String(), noProcessed)
}

func TestTakeQuizEndToEnd(t *testing.T) {
	// login, document 1, mcq, 2 questions, medium, then the two answers
	h := newHarness(t, strings.Join([]string{testUser, "1", "mcq", "2", "medium", "a", "b"}, "\n")+"\n")
	_, err := h.api.AddDocument(testUser, "Physics", "force equals mass times acceleration", true)
	require.NoError(t, err)
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "quiz"))
	out := h.out.String()
	assert.Contains(t, out, "Question 1 of 2")
	assert.Contains(t, out, "Score: 2/2")
	assert.Contains(t, out, "Outstanding!")
	assert.Len(t, h.app.page().attempts.State().Data, 1)
}

func TestTakeQuizSeesNewlyProcessedDocument(t *testing.T) {
	h := newHarness(t, strings.Join([]string{testUser, "1", "mcq", "2", "medium", "a", "b"}, "\n")+"\n")
	doc, err := h.api.AddDocument(testUser, "Chemistry", "water boils at one hundred degrees", false)
	require.NoError(t, err)
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "docs"))
	require.Len(t, h.app.page().documents.State().Data, 1)
	require.NoError(t, h.api.Process(testUser, doc.ID))

	require.NoError(t, h.app.dispatch(ctx, "quiz"))
	out := h.out.String()
	assert.NotContains(t, out, noProcessed)
	assert.Contains(t, out, "Generating quiz...")
	assert.Contains(t, out, "Question 1 of 2")
}

func TestTakeQuizFallsBackToLoadedDocumentsWhenOffline(t *testing.T) {
	h := newHarness(t, strings.Join([]string{testUser, "1", "mcq", "2", "medium"}, "\n")+"\n")
	_, err := h.api.AddDocument(testUser, "Geography", "the nile is a long river", true)
	require.NoError(t, err)
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "docs"))
	h.srv.Close()

	require.NoError(t, h.app.dispatch(ctx, "quiz"))
	out := h.out.String()
	assert.Contains(t, out, "1) Geography")
	assert.NotContains(t, out, noProcessed)
}

func TestTakeQuizRejectsBadCount(t *testing.T) {
	h := newHarness(t, strings.Join([]string{testUser, "1", "saq", "50", "easy"}, "\n")+"\n")
	_, err := h.api.AddDocument(testUser, "History", "rome was not built in a day", true)
	require.NoError(t, err)
	h.login(t)

	require.NoError(t, h.app.dispatch(context.Background(), "quiz"))
	assert.NotContains(t, h.out.String(), "Generating quiz...")
}

func TestAddGoalRefreshesGoals(t *testing.T) {
	input := strings.Join([]string{testUser, "Finish biology", "", "2030-01-01", "90", ""}, "\n") + "\n"
	h := newHarness(t, input)
	h.login(t)
	h.app.now = func() time.Time { return time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "addgoal"))

	goals := h.app.page().goals.State().Data
	require.Len(t, goals, 1)
	assert.Equal(t, "Finish biology", goals[0].Title)
	assert.Contains(t, h.out.String(), "Finish biology")
}

func TestExpiredSessionSendsUserToLogin(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)
	ctx := context.Background()

	// revoke the token behind the client's back
	req, err := http.NewRequest(http.MethodPost, h.url+"/api/auth/logout/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+h.store.Token(ctx))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, h.app.dispatch(ctx, "docs"))

	assert.Contains(t, h.out.String(), "Your session has expired. Please log in again.")
	assert.Equal(t, common.RouteLogin, h.app.Route())
	assert.False(t, h.app.session.State().IsAuthenticated)
	assert.Empty(t, h.store.Token(ctx))
	assert.Equal(t, "Your session has expired. Please log in again.", h.app.takeNotice())
}

func TestLogoutWithRevokedTokenDoesNotReportExpiry(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)
	ctx := context.Background()

	req, err := http.NewRequest(http.MethodPost, h.url+"/api/auth/logout/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+h.store.Token(ctx))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, h.app.dispatch(ctx, "logout"))

	assert.Contains(t, h.out.String(), "Logged out.")
	assert.NotContains(t, h.out.String(), "expired")
	assert.Empty(t, h.app.takeNotice())
	assert.Equal(t, common.RouteLogin, h.app.Route())
}

func TestLogoutClearsPagesAndSession(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	_, err := h.api.AddDocument(testUser, "Biology", "cells", true)
	require.NoError(t, err)
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "docs"))
	require.NotEmpty(t, h.app.page().documents.State().Data)

	require.NoError(t, h.app.dispatch(ctx, "logout"))
	assert.Contains(t, h.out.String(), "Logged out.")
	assert.Empty(t, h.app.page().documents.State().Data)
	assert.False(t, h.store.IsAuthenticated(ctx))
	assert.Equal(t, common.RouteLogin, h.app.Route())
}

func TestExecRunsOneCommand(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	err := h.app.Exec(ctx, "docs")
	require.Error(t, err)

	token, err := h.api.IssueToken(testUser)
	require.NoError(t, err)
	require.NoError(t, h.store.SaveLogin(ctx, h.user, token))

	require.NoError(t, h.app.Exec(ctx, "whoami"))
	assert.Contains(t, h.out.String(), "Username: "+testUser)

	assert.Error(t, h.app.Exec(ctx, "nope"))
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.app.dispatch(context.Background(), "frobnicate"))
	assert.Contains(t, h.out.String(), "Unknown command: frobnicate")
}

func TestCheckOnlineFlipsMode(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	h.app.checkOnline(ctx)
	assert.Equal(t, ModeOnline, h.app.Mode())

	h.app.pinger = pingerFunc(func(context.Context) error { return client.ErrUnavailable })
	h.app.checkOnline(ctx)
	assert.Equal(t, ModeOffline, h.app.Mode())
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"cancelled", context.Canceled, "Cancelled."},
		{"offline", client.ErrUnavailable, "Server unavailable. Check your connection and try again."},
		{"expired", client.ErrUnauthorized, "Your session has expired. Please log in again."},
		{"server", &client.APIError{Status: 500, Message: "boom"}, "Something went wrong on the server. Please try again."},
		{"client", &client.APIError{Status: 400, Message: "bad input"}, "bad input"},
		{"plain", io.ErrUnexpectedEOF, io.ErrUnexpectedEOF.Error()},
		{"shown as is", usage("show <id>"), "Usage: show <id>"},
		{"wrapped display", fmt.Errorf("upload: %w", displayf("%s cannot be changed", "id")), "id cannot be changed"},
		{"not signed in", services.ErrNotAuthenticated, "Please log in first."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}

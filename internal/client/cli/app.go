package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/pdflearn/internal/client/config"
	"github.com/dmitrijs2005/pdflearn/internal/client/fetch"
	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/quiz"
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
	"github.com/dmitrijs2005/pdflearn/internal/common"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type DocumentsAPI interface {
	List(ctx context.Context) ([]models.Document, error)
	Get(ctx context.Context, id int64) (models.Document, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, req models.SearchRequest) (models.SearchResult, error)
	Reprocess(ctx context.Context, id int64) (models.Message, error)
}

type QuizzesAPI interface {
	List(ctx context.Context) ([]models.Quiz, error)
	Get(ctx context.Context, id int64) (models.Quiz, error)
	Generate(ctx context.Context, req models.GenerateQuizRequest) (models.Quiz, error)
	CreateAttempt(ctx context.Context, quizID int64) (models.Attempt, error)
	SubmitAttempt(ctx context.Context, attemptID int64, req models.SubmitAttemptRequest) (models.SubmitResult, error)
	Attempts(ctx context.Context) ([]models.Attempt, error)
	Attempt(ctx context.Context, id int64) (models.Attempt, error)
	Stats(ctx context.Context) (models.QuizStats, error)
}

type ProgressAPI interface {
	Progress(ctx context.Context) ([]models.DocumentProgress, error)
	Stats(ctx context.Context) (models.ProgressStats, error)
	Overview(ctx context.Context) (models.ProgressOverview, error)
	Sessions(ctx context.Context) ([]models.StudySession, error)
	RecentSessions(ctx context.Context) ([]models.StudySession, error)
	StartSession(ctx context.Context, req models.StartSessionRequest) (models.StudySession, error)
	EndSession(ctx context.Context, id int64) (models.StudySession, error)
	Goals(ctx context.Context) ([]models.LearningGoal, error)
	CreateGoal(ctx context.Context, req models.GoalRequest) (models.LearningGoal, error)
	UpdateGoal(ctx context.Context, id int64, patch models.GoalPatch) (models.LearningGoal, error)
	UpdateGoalProgress(ctx context.Context, id int64, progress float64) (models.LearningGoal, error)
}

// Pinger reports whether the API answers at all.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App is the interactive client: session state, API access and the pages
// rendered as REPL commands.
type App struct {
	config   *config.Config
	log      logging.Logger
	out      io.Writer
	reader   *bufio.Reader
	now      func() time.Time
	session  services.SessionController
	uploads  services.DocumentService
	docs     DocumentsAPI
	quizzes  QuizzesAPI
	progress ProgressAPI
	pinger   Pinger
	runner   *quiz.Runner
	commands map[string]*command

	mu     sync.Mutex
	mode   Mode
	route  string
	notice string
	pages  *pages
}

// pages holds the data-fetch state of every list a page shows.
type pages struct {
	documents *fetch.Query[[]models.Document]
	attempts  *fetch.Query[[]models.Attempt]
	goals     *fetch.Query[[]models.LearningGoal]
}

func (a *App) newPages() *pages {
	return &pages{
		documents: fetch.New(a.docs.List, fetch.WithInitial([]models.Document{})),
		attempts:  fetch.New(a.quizzes.Attempts, fetch.WithInitial([]models.Attempt{})),
		goals:     fetch.New(a.progress.Goals, fetch.WithInitial([]models.LearningGoal{})),
	}
}

func (p *pages) close() {
	p.documents.Close()
	p.attempts.Close()
	p.goals.Close()
}

// resetPages drops data cached for the previous user. It must not run while
// a page is loading.
func (a *App) resetPages() {
	a.mu.Lock()
	old := a.pages
	a.pages = a.newPages()
	a.mu.Unlock()
	if old != nil {
		old.close()
	}
}

func (a *App) page() *pages {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pages
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) navigate(route string) {
	a.mu.Lock()
	a.route = route
	a.mu.Unlock()
}

func (a *App) Route() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// setNotice queues a message shown before the next prompt.
func (a *App) setNotice(msg string) {
	a.mu.Lock()
	a.notice = msg
	a.mu.Unlock()
}

func (a *App) takeNotice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.notice
	a.notice = ""
	return n
}

// sessionExpired is the single 401 listener. The transport already wiped
// the stored session; this drops the in-memory state and sends the user to
// the login page.
func (a *App) sessionExpired(ctx context.Context) {
	a.session.Invalidate(ctx)
	a.navigate(common.RouteLogin)
	a.setNotice("Your session has expired. Please log in again.")
}

// StartOnlineStatusWatcher probes the API every interval and flips the
// connectivity mode until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.pinger.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

func (a *App) status() string {
	s := ""
	if snap := a.session.State(); snap.User != nil {
		s = snap.User.Username + " "
	}
	s += string(a.Mode())
	return "(" + s + ")"
}

// Close releases page state. It does not close the stores owned by the
// application container.
func (a *App) Close() {
	a.mu.Lock()
	p := a.pages
	a.pages = nil
	a.mu.Unlock()
	if p != nil {
		p.close()
	}
}

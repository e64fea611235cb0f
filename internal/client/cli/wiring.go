package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/dmitrijs2005/pdflearn/internal/buildinfo"
	"github.com/dmitrijs2005/pdflearn/internal/client/client"
	"github.com/dmitrijs2005/pdflearn/internal/client/config"
	"github.com/dmitrijs2005/pdflearn/internal/client/quiz"
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
	"github.com/dmitrijs2005/pdflearn/internal/client/session"
	"github.com/dmitrijs2005/pdflearn/internal/cryptox"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
	"github.com/dmitrijs2005/pdflearn/internal/telemetry"
)

// Terminal is where the App reads input and writes output.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// Container owns the assembled App and the resources behind it.
type Container struct {
	App *App
	fx  *fx.App
}

// Stop closes the page state, the database and flushes telemetry.
func (c *Container) Stop(ctx context.Context) error {
	c.App.Close()
	return c.fx.Stop(ctx)
}

// NewApp wires the application from cfg and starts its resources.
func NewApp(ctx context.Context, cfg *config.Config, term Terminal) (*Container, error) {
	var app *App
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, term),
		fx.Provide(
			newLogger,
			newDatabase,
			newSealer,
			session.NewStore,
			newHTTPClient,
			client.NewAuthAPI,
			client.NewDocumentsAPI,
			client.NewQuizzesAPI,
			client.NewProgressAPI,
			newSessionController,
			newDocumentService,
			newApp,
		),
		fx.Invoke(setupTracing),
		fx.Populate(&app),
	)
	if err := fxApp.Err(); err != nil {
		return nil, err
	}
	if err := fxApp.Start(ctx); err != nil {
		return nil, err
	}
	return &Container{App: app, fx: fxApp}, nil
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (logging.Logger, error) {
	if !cfg.IsEnvProd() {
		return logging.New(os.Stderr, cfg.LogLevel, cfg.Environment), nil
	}
	sentryWriter, err := logging.NewSentryWriter(cfg.SentryDSN, cfg.Environment, buildinfo.Version)
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return sentryWriter.Close() }})
	return logging.New(os.Stderr, cfg.LogLevel, cfg.Environment, sentryWriter), nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := client.InitDatabase(context.Background(), cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})
	return db, nil
}

func newSealer(cfg *config.Config) (*cryptox.Sealer, error) {
	key, err := cryptox.LoadOrCreateKey(cfg.KeyPath())
	if err != nil {
		return nil, err
	}
	return cryptox.NewSealer(key)
}

func newHTTPClient(cfg *config.Config, store *session.Store, log logging.Logger) (*client.HTTPClient, error) {
	return client.NewHTTPClient(cfg.APIURL, store,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log.With("component", "http")),
	)
}

func newSessionController(api *client.AuthAPI, store *session.Store, log logging.Logger) services.SessionController {
	return services.NewSessionController(api, store, log)
}

func newDocumentService(api *client.DocumentsAPI, log logging.Logger) services.DocumentService {
	return services.NewDocumentService(api, log)
}

func setupTracing(lc fx.Lifecycle, cfg *config.Config) error {
	shutdown, err := telemetry.SetupTracing(context.Background(), cfg.TraceEndpoint)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return shutdown(ctx) }})
	return nil
}

// appParams lists what the App is built from.
type appParams struct {
	fx.In

	Config    *config.Config
	Terminal  Terminal
	Log       logging.Logger
	HTTP      *client.HTTPClient
	Session   services.SessionController
	Uploads   services.DocumentService
	Documents *client.DocumentsAPI
	Quizzes   *client.QuizzesAPI
	Progress  *client.ProgressAPI
}

func newApp(p appParams) *App {
	app := assemble(p.Config, p.Terminal, p.Log, p.Session, p.Uploads, p.Documents, p.Quizzes, p.Progress, p.HTTP)
	p.HTTP.OnUnauthorized(app.sessionExpired)
	return app
}

// assemble builds an App from its parts. Tests call it with fakes.
func assemble(cfg *config.Config, term Terminal, log logging.Logger, sc services.SessionController,
	uploads services.DocumentService, docs DocumentsAPI, quizzes QuizzesAPI, progress ProgressAPI, pinger Pinger) *App {
	if log == nil {
		log = logging.Nop()
	}
	reader := bufio.NewReader(term.In)
	a := &App{
		config:   cfg,
		log:      log.With("component", "cli"),
		out:      term.Out,
		reader:   reader,
		now:      time.Now,
		session:  sc,
		uploads:  uploads,
		docs:     docs,
		quizzes:  quizzes,
		progress: progress,
		pinger:   pinger,
		runner:   quiz.NewRunner(reader, term.Out),
		mode:     ModeOffline,
	}
	a.registerCommands()
	a.pages = a.newPages()
	return a
}

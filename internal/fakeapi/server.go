// Package fakeapi is an in-memory stand-in for the pdflearn REST backend.
// It speaks the same paths and payloads as the real service and grades
// quizzes trivially, which is enough for client tests and local demos
// (pdflearn mock-server).
package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL     = 24 * time.Hour
	maxDocumentsPerUser = 50
	maxUploadBytes      = 64 << 20
)

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSecret sets the HMAC key tokens are signed with.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithBcryptCost lowers hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.bcryptCost = cost }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithPendingProcessing leaves uploads unprocessed until Process is called.
func WithPendingProcessing() Option {
	return func(s *Server) { s.autoProcess = false }
}

type Server struct {
	store       *store
	log         zerolog.Logger
	secret      []byte
	tokenTTL    time.Duration
	bcryptCost  int
	now         func() time.Time
	autoProcess bool
}

func New(opts ...Option) *Server {
	s := &Server{
		store:       newStore(),
		log:         zerolog.Nop(),
		secret:      []byte("pdflearn-dev-secret"),
		tokenTTL:    defaultTokenTTL,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
		autoProcess: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler serves the API under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("url", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("HTTP request")
	}))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register/", s.register)
			r.Post("/login/", s.login)
			r.With(s.requireAuth).Post("/logout/", s.logout)
			r.With(s.requireAuth).Get("/me/", s.me)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.listDocuments)
				r.Post("/", s.uploadDocument)
				r.Post("/search/", s.searchDocuments)
				r.Get("/{id}/", s.getDocument)
				r.Delete("/{id}/", s.deleteDocument)
				r.Post("/{id}/reprocess/", s.reprocessDocument)
			})

			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/quizzes/", s.listQuizzes)
				r.Post("/quizzes/generate/", s.generateQuiz)
				r.Get("/quizzes/{id}/", s.getQuiz)
				r.Get("/attempts/", s.listAttempts)
				r.Post("/attempts/", s.createAttempt)
				r.Get("/attempts/stats/", s.quizStats)
				r.Get("/attempts/{id}/", s.getAttempt)
				r.Post("/attempts/{id}/submit/", s.submitAttempt)
			})

			r.Route("/progress", func(r chi.Router) {
				r.Get("/progress/", s.listProgress)
				r.Get("/progress/stats/", s.progressStats)
				r.Get("/progress/overview/", s.progressOverview)
				r.Get("/sessions/", s.listSessions)
				r.Get("/sessions/recent/", s.recentSessions)
				r.Post("/sessions/start/", s.startSession)
				r.Post("/sessions/{id}/end/", s.endSession)
				r.Get("/goals/", s.listGoals)
				r.Post("/goals/", s.createGoal)
				r.Patch("/goals/{id}/", s.updateGoal)
				r.Post("/goals/{id}/update_progress/", s.updateGoalProgress)
			})
		})
	})

	return r
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Starting mock API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

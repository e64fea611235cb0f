// Package services holds the client-side application services. The session
// controller owns the process-wide authentication state of the CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/common"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
)

// ErrMissingToken is returned by Login when the server accepted the
// credentials but handed back no bearer token.
var ErrMissingToken = errors.New("login response carries no access token")

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the remote side of authentication.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error)
	Register(ctx context.Context, data models.Registration) (models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
}

// SessionStore is the durable side of the session.
type SessionStore interface {
	Load(ctx context.Context) *models.User
	IsAuthenticated(ctx context.Context) bool
	Token(ctx context.Context) string
	Save(ctx context.Context, u models.User) error
	SaveLogin(ctx context.Context, u models.User, token string) error
	Update(ctx context.Context, partial map[string]any) (*models.User, error)
	Clear(ctx context.Context) error
}

type Phase string

const (
	PhaseChecking      Phase = "checking"
	PhaseAuthenticated Phase = "authenticated"
	PhaseAnonymous     Phase = "anonymous"
)

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Phase           Phase
}

// SessionController defines the authentication lifecycle of the CLI.
//
// Contract:
//   - CheckSession: validate the stored session against the server; never fails,
//     any problem lands in the anonymous state.
//   - Login / Register: errors are returned to the caller for display.
//   - Logout: best effort remotely, always clears locally; never fails.
//   - UpdateUser: local merge only, no network.
//   - Invalidate: drop to anonymous after the transport saw a 401.
//
// Implementations are safe for concurrent use. Subscribers are called after
// every state change, outside of any internal lock.
type SessionController interface {
	CheckSession(ctx context.Context) Snapshot
	Login(ctx context.Context, creds models.Credentials) (models.User, error)
	Register(ctx context.Context, data models.Registration) (models.User, error)
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, partial map[string]any) (models.User, error)
	Invalidate(ctx context.Context)
	State() Snapshot
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

type Option func(*sessionController)

// WithClock replaces time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *sessionController) { c.now = now }
}

type sessionController struct {
	api   AuthAPI
	store SessionStore
	log   logging.Logger
	now   func() time.Time

	mu    sync.Mutex
	state Snapshot

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewSessionController builds a controller in the checking state.
func NewSessionController(api AuthAPI, store SessionStore, log logging.Logger, opts ...Option) SessionController {
	if log == nil {
		log = logging.Nop()
	}
	c := &sessionController{
		api:   api,
		store: store,
		log:   log.With("component", "session_controller"),
		now:   time.Now,
		state: Snapshot{IsLoading: true, Phase: PhaseChecking},
		subs:  make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sessionController) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *sessionController) snapshotLocked() Snapshot {
	snap := c.state
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

func (c *sessionController) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// set applies fn to the state and notifies subscribers with the result.
func (c *sessionController) set(fn func(*Snapshot)) Snapshot {
	c.mu.Lock()
	fn(&c.state)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.subMu.Unlock()

	for _, s := range subs {
		s(snap)
	}
	return snap
}

func (c *sessionController) setLoading(v bool) {
	c.set(func(s *Snapshot) { s.IsLoading = v })
}

func (c *sessionController) becomeAuthenticated(ctx context.Context, u models.User) Snapshot {
	c.set(func(s *Snapshot) {
		s.User = &u
		s.IsAuthenticated = true
		s.Phase = PhaseAuthenticated
	})
	return c.enforceInvariant(ctx)
}

func (c *sessionController) becomeAnonymous() Snapshot {
	return c.set(func(s *Snapshot) {
		s.User = nil
		s.IsAuthenticated = false
		s.Phase = PhaseAnonymous
	})
}

// clearAndForget wipes storage and drops to anonymous.
func (c *sessionController) clearAndForget(ctx context.Context) Snapshot {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(ctx, "clear session", "error", err)
	}
	return c.becomeAnonymous()
}

// enforceInvariant treats "authenticated without a user or a token" as an
// invalid session.
func (c *sessionController) enforceInvariant(ctx context.Context) Snapshot {
	snap := c.State()
	if !snap.IsAuthenticated {
		return snap
	}
	if snap.User != nil && c.store.Token(ctx) != "" {
		return snap
	}
	c.log.Warn(ctx, "inconsistent session, clearing", "has_user", snap.User != nil)
	return c.clearAndForget(ctx)
}

// tokenExpired reports whether token is a JWT whose exp has passed.
// Opaque or unparsable tokens are never considered expired here.
func (c *sessionController) tokenExpired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(c.now())
}

func (c *sessionController) CheckSession(ctx context.Context) Snapshot {
	c.set(func(s *Snapshot) {
		s.IsLoading = true
		s.Phase = PhaseChecking
	})
	c.checkSession(ctx)
	return c.set(func(s *Snapshot) { s.IsLoading = false })
}

func (c *sessionController) checkSession(ctx context.Context) Snapshot {
	cached := c.store.Load(ctx)
	if cached == nil || !c.store.IsAuthenticated(ctx) {
		return c.clearAndForget(ctx)
	}

	token := c.store.Token(ctx)
	if token == "" {
		c.log.Info(ctx, "stored session has no token")
		return c.clearAndForget(ctx)
	}
	if c.tokenExpired(token) {
		c.log.Info(ctx, "stored token expired", "error", common.ErrTokenExpired)
		return c.clearAndForget(ctx)
	}

	fresh, err := c.api.Me(ctx)
	if err != nil {
		c.log.Info(ctx, "session check failed", "error", err)
		return c.clearAndForget(ctx)
	}
	if err := c.store.Save(ctx, fresh); err != nil {
		c.log.Warn(ctx, "persist refreshed user", "error", err)
	}
	return c.becomeAuthenticated(ctx, fresh)
}

func (c *sessionController) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	res, err := c.api.Login(ctx, creds)
	if err != nil {
		return models.User{}, err
	}
	if res.Token == "" {
		return models.User{}, ErrMissingToken
	}
	if err := c.store.SaveLogin(ctx, res.User, res.Token); err != nil {
		return models.User{}, fmt.Errorf("persist session: %w", err)
	}

	snap := c.becomeAuthenticated(ctx, res.User)
	if !snap.IsAuthenticated {
		return models.User{}, common.ErrInvalidToken
	}
	c.log.Info(ctx, "logged in", "username", res.User.Username)
	return res.User, nil
}

func (c *sessionController) Register(ctx context.Context, data models.Registration) (models.User, error) {
	c.setLoading(true)
	defer c.setLoading(false)

	return c.api.Register(ctx, data)
}

func (c *sessionController) Logout(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.api.Logout(ctx); err != nil {
		c.log.Warn(ctx, "logout request failed", "error", err)
	}
	c.clearAndForget(ctx)
}

func (c *sessionController) UpdateUser(ctx context.Context, partial map[string]any) (models.User, error) {
	if !c.State().IsAuthenticated {
		return models.User{}, ErrNotAuthenticated
	}
	u, err := c.store.Update(ctx, partial)
	if err != nil {
		return models.User{}, err
	}
	c.set(func(s *Snapshot) { s.User = u })
	c.enforceInvariant(ctx)
	return *u, nil
}

func (c *sessionController) Invalidate(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(ctx, "clear session", "error", err)
	}
	c.becomeAnonymous()
}

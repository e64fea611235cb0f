// Package session persists the signed-in user between runs of the CLI.
//
// Three keys live in the metadata table: the JSON user record, the bearer
// token (sealed at rest) and the "isAuthenticated" flag. Reads never fail:
// anything missing or unreadable is treated as "no session" and logged.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdflearn/internal/common"
	"github.com/dmitrijs2005/pdflearn/internal/cryptox"
	"github.com/dmitrijs2005/pdflearn/internal/dbx"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
)

// ErrNoSession is returned by Update when there is no stored user to merge into.
var ErrNoSession = errors.New("no stored session")

const authenticatedValue = "true"

type Store struct {
	db     *sql.DB
	repo   metadata.Repository
	sealer *cryptox.Sealer
	log    logging.Logger
}

func NewStore(db *sql.DB, sealer *cryptox.Sealer, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		db:     db,
		repo:   metadata.NewSQLiteRepository(db),
		sealer: sealer,
		log:    log.With("component", "session"),
	}
}

func encodeUser(u models.User) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return data, nil
}

// Save stores the user and marks the session authenticated in one transaction.
func (s *Store) Save(ctx context.Context, u models.User) error {
	data, err := encodeUser(u)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.StorageKeyUser, data); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyIsAuthenticated, []byte(authenticatedValue))
	})
}

// SaveLogin writes user, token and flag together, so a crash never leaves
// a flag without a token behind.
func (s *Store) SaveLogin(ctx context.Context, u models.User, token string) error {
	data, err := encodeUser(u)
	if err != nil {
		return err
	}
	sealed, err := s.sealer.Seal([]byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.StorageKeyAccessToken, []byte(sealed)); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.StorageKeyUser, data); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyIsAuthenticated, []byte(authenticatedValue))
	})
}

// Load returns the stored user or nil.
func (s *Store) Load(ctx context.Context) *models.User {
	data, err := s.repo.Get(ctx, common.StorageKeyUser)
	if err != nil {
		s.log.Warn(ctx, "read stored user", "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		s.log.Warn(ctx, "stored user is corrupt", "error", err)
		return nil
	}
	return &u
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	data, err := s.repo.Get(ctx, common.StorageKeyIsAuthenticated)
	if err != nil {
		s.log.Warn(ctx, "read auth flag", "error", err)
		return false
	}
	return string(data) == authenticatedValue
}

// Token returns the stored bearer token or "".
func (s *Store) Token(ctx context.Context) string {
	data, err := s.repo.Get(ctx, common.StorageKeyAccessToken)
	if err != nil {
		s.log.Warn(ctx, "read stored token", "error", err)
		return ""
	}
	if data == nil {
		return ""
	}

	token, err := s.sealer.Open(string(data))
	if err != nil {
		s.log.Warn(ctx, "stored token cannot be opened", "error", err)
		return ""
	}
	return string(token)
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.repo.Delete(ctx, common.StorageKeyAccessToken)
	}
	sealed, err := s.sealer.Seal([]byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return s.repo.Set(ctx, common.StorageKeyAccessToken, []byte(sealed))
}

// Clear removes every session key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.SessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Update merges partial into the stored user and persists the result.
func (s *Store) Update(ctx context.Context, partial map[string]any) (*models.User, error) {
	cur := s.Load(ctx)
	if cur == nil {
		return nil, ErrNoSession
	}

	merged, err := cur.Merge(partial)
	if err != nil {
		return nil, err
	}
	data, err := encodeUser(merged)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, common.StorageKeyUser, data); err != nil {
		return nil, err
	}
	return &merged, nil
}

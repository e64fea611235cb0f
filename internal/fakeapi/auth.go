package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

type contextKey string

const contextClaimsKey contextKey = "claims"

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func fieldError(field, msg string) map[string][]string {
	return map[string][]string{field: {msg}}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "":
		writeJSON(w, http.StatusBadRequest, fieldError("username", "This field is required."))
		return
	case req.Password == "":
		writeJSON(w, http.StatusBadRequest, fieldError("password", "This field is required."))
		return
	case req.PasswordConfirm != "" && req.Password != req.PasswordConfirm:
		writeJSON(w, http.StatusBadRequest, fieldError("password", "Passwords don't match"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := s.store.createAccount(models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, hash)
	if errors.Is(err, errConflict) {
		writeJSON(w, http.StatusBadRequest, fieldError("username", "A user with that username already exists."))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	acc, err := s.store.accountByUsername(strings.TrimSpace(req.Username))
	if err == nil {
		err = bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password))
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid credentials"}})
		return
	}

	token, err := s.issueToken(acc.user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: acc.user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.store.revoke(claims.ID)
	writeJSON(w, http.StatusOK, models.Message{Message: "Successfully logged out."})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.user(userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// IssueToken signs a token for an existing user; tests use it to skip login.
func (s *Server) IssueToken(username string) (string, error) {
	acc, err := s.store.accountByUsername(username)
	if err != nil {
		return "", err
	}
	return s.issueToken(acc.user.ID)
}

// CreateUser registers an account directly.
func (s *Server) CreateUser(username, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, err
	}
	return s.store.createAccount(models.User{Username: username, Email: username + "@example.com"}, hash)
}

func (s *Server) issueToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if s.store.isRevoked(claims.ID) {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *jwt.RegisteredClaims {
	claims, _ := ctx.Value(contextClaimsKey).(*jwt.RegisteredClaims)
	if claims == nil {
		return &jwt.RegisteredClaims{}
	}
	return claims
}

func userIDFromContext(ctx context.Context) int64 {
	id, _ := strconv.ParseInt(claimsFromContext(ctx).Subject, 10, 64)
	return id
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

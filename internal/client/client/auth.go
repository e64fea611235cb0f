package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

type AuthAPI struct {
	c *HTTPClient
}

func NewAuthAPI(c *HTTPClient) *AuthAPI { return &AuthAPI{c: c} }

func (a *AuthAPI) Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error) {
	resp, err := a.c.Do(ctx, http.MethodPost, "/auth/login/", creds, WithoutAuth())
	if err != nil {
		return models.LoginResult{}, err
	}
	return models.ParseLoginResponse(resp.Body)
}

func (a *AuthAPI) Register(ctx context.Context, data models.Registration) (models.User, error) {
	return call[models.User](ctx, a.c, http.MethodPost, "/auth/register/", data, WithoutAuth())
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.c.Do(ctx, http.MethodPost, "/auth/logout/", nil)
	return err
}

func (a *AuthAPI) Me(ctx context.Context) (models.User, error) {
	return call[models.User](ctx, a.c, http.MethodGet, "/auth/me/", nil)
}

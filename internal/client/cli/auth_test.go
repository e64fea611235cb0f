package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pdflearn/internal/client/client"
	"github.com/dmitrijs2005/pdflearn/internal/common"
)

func TestRegister_Success(t *testing.T) {
	input := strings.Join([]string{"bob", "bob@example.com", "Bob", ""}, "\n") + "\n"
	h := newHarness(t, input)
	ctx := context.Background()
	h.app.session.CheckSession(ctx)
	stubPasswords(t, "hunter22", "hunter22")

	require.NoError(t, h.app.dispatch(ctx, "register"))

	assert.Contains(t, h.out.String(), "Registration successful! Please sign in.")
	assert.Equal(t, common.RouteLogin, h.app.Route())
	assert.False(t, h.app.session.State().IsAuthenticated)
}

func TestRegister_LocalValidation(t *testing.T) {
	tests := []struct {
		name string
		pws  []string
		want string
	}{
		{"mismatch", []string{"hunter22", "hunter23"}, "Passwords do not match"},
		{"short", []string{"abc", "abc"}, "Password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "bob\n\n\n\n")
			ctx := context.Background()
			h.app.session.CheckSession(ctx)
			stubPasswords(t, tt.pws...)

			require.NoError(t, h.app.dispatch(ctx, "register"))
			assert.Contains(t, h.out.String(), tt.want)
			assert.NotContains(t, h.out.String(), "Registration successful")
		})
	}
}

func TestRegister_ServerRejectsDuplicate(t *testing.T) {
	h := newHarness(t, testUser+"\n\n\n\n")
	ctx := context.Background()
	h.app.session.CheckSession(ctx)
	stubPasswords(t, "hunter22", "hunter22")

	require.NoError(t, h.app.dispatch(ctx, "register"))

	assert.Contains(t, h.out.String(), "A user with that username already exists.")
}

func TestRegistrationMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"message field", &client.APIError{Status: 400, Body: []byte(`{"message":"Closed for signups"}`)}, "Closed for signups"},
		{"field errors", &client.APIError{Status: 400, Message: "email: Enter a valid email address."}, "email: Enter a valid email address."},
		{"server error", &client.APIError{Status: 502, Message: "bad gateway"}, registrationFailed},
		{"offline", client.ErrUnavailable, "Server unavailable. Check your connection and try again."},
		{"other", errors.New("boom"), registrationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registrationMessage(tt.err))
		})
	}
}

func TestLogin_InputErrorIsReported(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	h.app.session.CheckSession(ctx)

	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return "", io.ErrUnexpectedEOF }
	t.Cleanup(func() { getSimpleText = orig })

	err := h.app.Login(ctx, nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, h.app.session.State().IsAuthenticated)
}

func TestWhoAmI(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)

	require.NoError(t, h.app.dispatch(context.Background(), "whoami"))

	assert.Contains(t, h.out.String(), "Username: "+testUser)
	assert.Contains(t, h.out.String(), "Email:    "+testUser+"@example.com")
}

func TestProfileSetUpdatesCachedUser(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "profile set first_name Alice"))
	require.NoError(t, h.app.dispatch(ctx, "profile set timezone Europe/Riga"))

	u := h.app.session.State().User
	require.NotNil(t, u)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "Europe/Riga", u.Extra["timezone"])

	stored := h.store.Load(ctx)
	require.NotNil(t, stored)
	assert.Equal(t, "Alice", stored.FirstName)
	assert.Equal(t, "Europe/Riga", stored.Extra["timezone"])

	assert.Contains(t, h.out.String(), "Profile updated.")
	assert.Contains(t, h.out.String(), "Name:     Alice")
	assert.Equal(t, "/profile", h.app.Route())
}

func TestProfileRejectsBadInput(t *testing.T) {
	h := newHarness(t, testUser+"\n")
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.app.dispatch(ctx, "profile set username mallory"))
	require.NoError(t, h.app.dispatch(ctx, "profile set email"))

	out := h.out.String()
	assert.Contains(t, out, "username cannot be changed")
	assert.Contains(t, out, "Usage: profile [set <field> <value>]")
	assert.Equal(t, testUser, h.app.session.State().User.Username)
}

package cli

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/client"
	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
	"github.com/dmitrijs2005/pdflearn/internal/client/validation"
	"github.com/dmitrijs2005/pdflearn/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const registrationFailed = "Registration failed. Please try again."

// Login prompts for credentials and signs in. A failed login keeps the user
// on the login page with the server's message.
func (a *App) Login(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Login(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		return err
	}

	a.resetPages()
	a.navigate(common.RouteHome)
	a.printf("Welcome back, %s!\n", u.DisplayName())
	return nil
}

// Register collects the sign-up form, validates it locally and creates the
// account. On success the user is sent to the login page.
func (a *App) Register(ctx context.Context, _ []string) error {
	var r models.Registration
	var err error
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Username", &r.Username},
		{"Email", &r.Email},
		{"First name (optional)", &r.FirstName},
		{"Last name (optional)", &r.LastName},
	}
	for _, f := range fields {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirmation, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)
	r.Password, r.PasswordConfirm = string(password), string(confirmation)

	if err := validation.Registration(r); err != nil {
		return err
	}

	if _, err := a.session.Register(ctx, r); err != nil {
		return &displayError{text: registrationMessage(err)}
	}

	a.navigate(common.RouteLogin)
	a.println("Registration successful! Please sign in.")
	return nil
}

func registrationMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Field("message"); msg != "" {
			return msg
		}
		// field errors such as {"username": ["..."]}
		if apiErr.Status < 500 && apiErr.Message != "" {
			return apiErr.Message
		}
		return registrationFailed
	}
	if errors.Is(err, client.ErrUnavailable) {
		return userMessage(err)
	}
	return registrationFailed
}

// Logout always ends the local session, even when the server is unreachable.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	// The server may already consider the token dead.
	a.takeNotice()
	a.resetPages()
	a.navigate(common.RouteLogin)
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	u := a.session.State().User
	if u == nil {
		return services.ErrNotAuthenticated
	}
	a.printf("Username: %s\n", u.Username)
	if u.Email != "" {
		a.printf("Email:    %s\n", u.Email)
	}
	if name := u.DisplayName(); name != u.Username {
		a.printf("Name:     %s\n", name)
	}

	keys := make([]string, 0, len(u.Extra))
	for k := range u.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.printf("%s: %v\n", k, u.Extra[k])
	}
	return nil
}

// fixedUserFields identify the account and are never edited locally.
var fixedUserFields = map[string]struct{}{"id": {}, "username": {}}

// Profile shows the signed-in user, or with "set <field> <value>" edits one
// field of the cached profile. Unknown fields are kept as extra attributes.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.WhoAmI(ctx, nil)
	}
	if args[0] != "set" || len(args) < 3 {
		return usage("profile [set <field> <value>]")
	}
	field := strings.ToLower(args[1])
	if _, ok := fixedUserFields[field]; ok {
		return displayf("%s cannot be changed", field)
	}
	if _, err := a.session.UpdateUser(ctx, map[string]any{field: strings.Join(args[2:], " ")}); err != nil {
		return err
	}
	a.println("Profile updated.")
	return a.WhoAmI(ctx, nil)
}

// Package models defines the wire types exchanged with the pdflearn backend
// and the view values the CLI derives from them.
package models

import (
	"encoding/json"
	"fmt"
)

// User is the authenticated account. Profile fields the client does not know
// about are kept in Extra so a round trip through storage is lossless.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	Extra map[string]any `json:"-"`
}

var knownUserFields = map[string]struct{}{
	"id": {}, "username": {}, "email": {}, "first_name": {}, "last_name": {},
}

type userAlias User

func (u User) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(userAlias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return base, nil
	}

	m := make(map[string]any, len(u.Extra)+5)
	for k, v := range u.Extra {
		m[k] = v
	}
	var known map[string]any
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		m[k] = v
	}
	return json.Marshal(m)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var a userAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User(a)
	u.Extra = nil
	for k, v := range raw {
		if _, ok := knownUserFields[k]; ok {
			continue
		}
		if u.Extra == nil {
			u.Extra = make(map[string]any)
		}
		u.Extra[k] = v
	}
	return nil
}

// Merge returns a copy of u with the fields of partial applied on top.
// Keys are JSON field names; unknown keys land in Extra.
func (u User) Merge(partial map[string]any) (User, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("encode user: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	for k, v := range partial {
		m[k] = v
	}
	data, err = json.Marshal(m)
	if err != nil {
		return User{}, fmt.Errorf("encode merged user: %w", err)
	}

	var out User
	if err := json.Unmarshal(data, &out); err != nil {
		return User{}, fmt.Errorf("decode merged user: %w", err)
	}
	return out, nil
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up form. PasswordConfirm is checked locally and
// sent along for the server to verify again.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// LoginResult is what the login endpoint hands back.
type LoginResult struct {
	User  User
	Token string
}

var tokenFields = []string{"token", "access", "access_token"}

// ParseLoginResponse accepts {"token": "...", "user": {...}} as well as a
// bare user object carrying the token next to its fields. The token may
// come back empty; deciding whether that is acceptable is up to the caller.
func ParseLoginResponse(data []byte) (LoginResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}

	var res LoginResult
	for _, k := range tokenFields {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			res.Token = s
			break
		}
	}

	if userData, ok := raw["user"]; ok {
		if err := json.Unmarshal(userData, &res.User); err != nil {
			return LoginResult{}, fmt.Errorf("decode login user: %w", err)
		}
		return res, nil
	}

	for _, k := range append(tokenFields, "refresh", "message") {
		delete(raw, k)
	}
	rest, err := json.Marshal(raw)
	if err != nil {
		return LoginResult{}, err
	}
	if err := json.Unmarshal(rest, &res.User); err != nil {
		return LoginResult{}, fmt.Errorf("decode login user: %w", err)
	}
	return res, nil
}

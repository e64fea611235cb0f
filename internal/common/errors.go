package common

import "errors"

var (
	// ErrInvalidToken reports a token that is malformed or cannot be opened.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired reports a token whose expiry claim is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// Package common contains shared constants and small helpers used across
// pdflearn components.
package common

// Keys of the durable client-side session storage.
const (
	StorageKeyUser            = "user"
	StorageKeyAccessToken     = "access_token"
	StorageKeyIsAuthenticated = "isAuthenticated"
)

// SessionKeys lists every persisted session key. A 401 or a logout removes all of them.
var SessionKeys = []string{StorageKeyUser, StorageKeyAccessToken, StorageKeyIsAuthenticated}

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// RequestIDHeaderName tags each outbound request for server-side correlation.
	RequestIDHeaderName = "X-Request-ID"
)

// Client routes the login/home redirects point at.
const (
	RouteLogin = "/login"
	RouteHome  = "/"
)

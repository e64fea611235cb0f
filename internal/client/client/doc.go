// Package client talks to the pdflearn REST backend.
//
// # Overview
//
// HTTPClient is the single request wrapper: it attaches the bearer token,
// keeps an in-process cookie jar, tags requests with X-Request-ID, wraps
// each call in an OpenTelemetry span and maps failures to errors.
// The API types (AuthAPI, DocumentsAPI, QuizzesAPI, ProgressAPI) are thin
// per-resource facades that only build paths and payloads.
//
// The package also bootstraps the local SQLite database (InitDatabase,
// RunMigrations) used by the session store.
//
// # Error Handling
//
// A non-2xx response becomes *APIError; callers use errors.As for details or
// errors.Is with ErrUnauthorized / ErrNotFound for the status class. Transport
// failures wrap ErrUnavailable. A 401 also clears the persisted session and
// fires the OnUnauthorized listener before the error is returned.
//
// HTTPClient is safe for concurrent use.
package client

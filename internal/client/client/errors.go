package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets callers match status classes with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Field returns the first message under key in the error body, or "".
func (e *APIError) Field(key string) string {
	var m map[string]any
	if err := json.Unmarshal(e.Body, &m); err != nil {
		return ""
	}
	return firstString(m[key])
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: errorMessage(status, body), Body: body}
}

// errorMessage picks a human readable message out of an error body.
// Known keys win; otherwise the first field error is used, e.g.
// {"username": ["already taken"]} becomes "username: already taken".
func errorMessage(status int, body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err == nil && len(m) > 0 {
		for _, k := range []string{"error", "message", "detail"} {
			if s := firstString(m[k]); s != "" {
				return s
			}
		}

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := firstString(m[k]); s != "" {
				if k == "non_field_errors" {
					return s
				}
				return k + ": " + s
			}
		}
	}

	if text := strings.TrimSpace(http.StatusText(status)); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s := firstString(item); s != "" {
				return s
			}
		}
	}
	return ""
}

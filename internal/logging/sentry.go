package logging

import (
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
)

// NewSentryWriter forwards error-level events to Sentry. It returns nil when
// dsn is empty. Callers Close the writer on exit to flush pending events.
func NewSentryWriter(dsn, environment, release string) (*sentryzerolog.Writer, error) {
	if dsn == "" {
		return nil, nil
	}
	return sentryzerolog.New(sentryzerolog.Config{
		ClientOptions: sentry.ClientOptions{
			Dsn:         dsn,
			Environment: environment,
			Release:     release,
		},
		Options: sentryzerolog.Options{
			Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
			WithBreadcrumbs: true,
			FlushTimeout:    3 * time.Second,
		},
	})
}

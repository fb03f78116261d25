// Package logger provides a context-scoped structured logger used by every
// other package in this module, following the teacher's service/logger
// convention of attaching a *logrus.Entry to a context.Context.
package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const entryKey ctxKey = "logger.entry"

var defaultLogger = logrus.New()

// NewContext returns a child context carrying a log entry derived from the
// default logger, annotated with the given fields.
func NewContext(parent context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(parent, entryKey, For(parent).WithFields(fields))
}

// For returns the log entry attached to ctx, or the default logger's base
// entry when ctx carries none.
func For(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(entryKey).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(defaultLogger)
}

// SetOptions mutates the default logger in place; call once at startup.
func SetOptions(f func(*logrus.Logger)) {
	f(defaultLogger)
}

// InitDefaults configures the default logger for either local (human
// readable) or non-local (JSON) output, and applies the requested level.
func InitDefaults(env string, debug bool) {
	SetOptions(func(l *logrus.Logger) {
		l.SetReportCaller(true)
		level := logrus.InfoLevel
		if debug {
			level = logrus.DebugLevel
		}
		l.SetLevel(level)

		if env == "local" {
			l.SetFormatter(&logrus.TextFormatter{DisableQuote: true})
		} else {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
	})
}

// Package loggingtest provides loggers for tests.
package loggingtest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"JobFeed/internal/logging"
)

// New routes output through t.Log.
func New(t testing.TB) *logging.Logger {
	return logging.FromZap(zaptest.NewLogger(t))
}

// Package timeouts provides the timeout values handlers use for database
// and other I/O work, applied through context.WithTimeout. Centralizing
// them keeps the tiers consistent across features.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads (user lookup at login, loading a
//     transcript configuration)
//   - Medium: list queries and writes that touch more than one document
//     (group member listings, membership adds, history pages)
package timeouts

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
)

// Ping returns the timeout for health checks and connectivity verification.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document reads and lookups.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and multi-document writes.
func Medium() time.Duration { return medium }

// WithTimeout creates a context with a timeout and returns a cancel
// function that logs a warning when the deadline was hit, so slow
// operations show up in the logs with their name.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups add member")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}

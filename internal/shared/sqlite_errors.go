// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// sqliteConflictMarkers are the error texts SQLite drivers use when another
// connection holds the write lock.
var sqliteConflictMarkers = []string{"SQLITE_BUSY", "database is locked", "SQLITE_LOCKED"}

// IsSQLiteConflictError reports whether err is a SQLite busy/locked error.
// These are concurrency errors that typically warrant a retry.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range sqliteConflictMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// RetryOnConflict runs fn up to attempts times, sleeping with exponential
// backoff (base, 2*base, 4*base, ...) between attempts that fail with a
// SQLite conflict. Other errors are returned immediately.
func RetryOnConflict(ctx context.Context, op string, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsSQLiteConflictError(err) || i == attempts-1 {
			break
		}
		delay := base * time.Duration(1<<i)
		slog.Debug("sqlite conflict, retrying", "op", op, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}

package session

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = 5 * time.Minute

// EvictCallback is called once for every session removed by the worker.
type EvictCallback func(id string)

// StartEvictionWorker runs a background goroutine that periodically removes
// sessions idle for longer than ttl. It returns immediately and stops when
// ctx is done. A ttl of zero or less disables the worker.
func StartEvictionWorker(ctx context.Context, store *Store, interval, ttl time.Duration, logger *slog.Logger, onEvict EvictCallback) {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		logger.Info("Session eviction disabled", "ttl", ttl)
		return
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		logger.Info("Session eviction worker started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweep(store, ttl, logger, onEvict)
			case <-ctx.Done():
				logger.Info("Session eviction worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(store *Store, ttl time.Duration, logger *slog.Logger, onEvict EvictCallback) {
	evicted := store.EvictIdle(ttl)
	if len(evicted) == 0 {
		return
	}
	for _, id := range evicted {
		logger.Debug("Session evicted", "session_id", id)
		if onEvict != nil {
			onEvict(id)
		}
	}
	logger.Info("Session eviction completed", "evicted", len(evicted), "remaining", store.Len())
}

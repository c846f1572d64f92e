package auth

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically removes expired refresh-token sessions so the store
// does not accumulate dead rows between restarts.
type Cleaner struct {
	store    SessionStore
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewCleaner constructs a sweeper over the provided session store.
func NewCleaner(store SessionStore, interval time.Duration, logger *slog.Logger) *Cleaner {
	if store == nil {
		panic("auth: cleaner session store must not be nil")
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		store:    store,
		interval: interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps on a ticker until the context is canceled.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	removed, err := c.store.DeleteExpired(ctx, c.now())
	if err != nil {
		c.logger.Error("sweep expired sessions", "error", err)
		return
	}
	if removed > 0 {
		c.logger.Info("removed expired sessions", "count", removed)
	}
}

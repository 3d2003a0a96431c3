package services

import (
	"context"
	"log/slog"
	"time"
)

// StartCleanup starts a background goroutine that periodically removes
// expired sessions and prunes stale rate-limit windows.
func StartCleanup(ctx context.Context, limiter *RateLimiter) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Cleanup loop stopped")
				return
			case <-ticker.C:
				cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				count, err := CleanupExpiredSessions(cleanupCtx)
				if err != nil {
					slog.Error("Failed to cleanup expired sessions", "error", err)
				} else if count > 0 {
					slog.Info("Cleaned up expired sessions", "count", count)
				}
				cancel()

				if limiter != nil {
					if pruned := limiter.Prune(); pruned > 0 {
						slog.Info("Pruned stale rate-limit windows", "count", pruned)
					}
				}
			}
		}
	}()

	slog.Info("Cleanup loop started")
}

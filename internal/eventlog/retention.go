package eventlog

import (
	"context"
	"log/slog"
	"time"
)

const retentionSweepInterval = time.Hour

// StartRetentionWorker runs a background goroutine that periodically
// deletes audit events older than maxAge. A maxAge of zero disables the
// worker; the log then grows without bound.
func StartRetentionWorker(ctx context.Context, rec *SQLite, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(retentionSweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", retentionSweepInterval, "max_age", maxAge)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, rec, maxAge)
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, rec *SQLite, maxAge time.Duration) {
	deleted, err := rec.Prune(ctx, maxAge)
	if err != nil {
		if isBusy(err) {
			slog.Warn("Retention sweep skipped, database busy", "error", err)
		} else {
			slog.Error("Retention sweep failed", "error", err)
		}
		return
	}
	if deleted > 0 {
		slog.Info("Retention sweep completed", "deleted", deleted)
	}
}

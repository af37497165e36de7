package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartAuditRetentionCleaner deletes audit events older than retention
// every interval until ctx is cancelled.
func StartAuditRetentionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention).UTC()
				res, err := db.ExecContext(ctx, `
                    DELETE FROM audit_events
                     WHERE created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean expired audit events", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired audit events", zap.Int64("removed", rows))
				}
			}
		}
	}()
}

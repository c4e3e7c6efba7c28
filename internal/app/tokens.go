package app

import (
	"context"
	"time"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

// FlushExpiredTokens drops blacklist entries whose tokens have expired
// and can no longer be presented anyway.
func FlushExpiredTokens(ctx context.Context) (int64, error) {
	blacklist := services.NewTokenBlacklist(globalLogger, globalPostgresPool)

	deleted, err := blacklist.FlushExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	globalLogger.Info().
		Int64("deleted", deleted).
		Msg("flushed expired tokens")
	return deleted, nil
}

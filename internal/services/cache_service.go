package services

import (
	"context"
	"time"

	"quickride/pkg/cache"
)

// CacheService is the slice of Redis the HTTP layer relies on: revoked
// tokens and per-client request budgets.
type CacheService interface {
	BlacklistToken(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

var _ CacheService = (*cache.RedisCache)(nil)

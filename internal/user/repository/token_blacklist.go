package repository

import (
	"context"
	"errors"
	"time"

	"leetlab/internal/common/cache"
)

const tokenBlacklistKeyPrefix = "token:blacklist:"

// TokenBlacklistRepository tracks revoked tokens by their id until they expire.
type TokenBlacklistRepository interface {
	Add(ctx context.Context, tokenID string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

type RedisTokenBlacklistRepository struct {
	cache        cache.BasicOps
	redisTimeout time.Duration
}

func NewTokenBlacklistRepository(cacheClient cache.BasicOps, redisTimeout time.Duration) TokenBlacklistRepository {
	if redisTimeout <= 0 {
		redisTimeout = time.Second
	}
	return &RedisTokenBlacklistRepository{cache: cacheClient, redisTimeout: redisTimeout}
}

func (r *RedisTokenBlacklistRepository) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	if r.cache == nil {
		return errors.New("cache is nil")
	}
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	ctxCache, cancel := context.WithTimeout(ctx, r.redisTimeout)
	defer cancel()
	return r.cache.Set(ctxCache, tokenBlacklistKeyPrefix+tokenID, "1", ttl)
}

func (r *RedisTokenBlacklistRepository) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	if r.cache == nil {
		return false, errors.New("cache is nil")
	}
	ctxCache, cancel := context.WithTimeout(ctx, r.redisTimeout)
	defer cancel()
	count, err := r.cache.Exists(ctxCache, tokenBlacklistKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

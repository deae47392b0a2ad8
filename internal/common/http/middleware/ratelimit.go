package middleware

import (
	"context"
	"fmt"
	"time"

	"leetlab/internal/common/cache"
	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/logger"
	"leetlab/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rateKeyPrefix = "rate:"

// RateLimiter enforces fixed-window request limits using Redis counters.
type RateLimiter struct {
	cache        cache.BasicOps
	redisTimeout time.Duration
}

// NewRateLimiter creates a RateLimiter.
func NewRateLimiter(cacheClient cache.BasicOps, redisTimeout time.Duration) *RateLimiter {
	return &RateLimiter{cache: cacheClient, redisTimeout: redisTimeout}
}

// Allow counts one hit on key and fails with TooManyRequests once max is exceeded within window.
func (l *RateLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) error {
	if max <= 0 || window <= 0 {
		return nil
	}
	if l.cache == nil {
		return pkgerrors.New(pkgerrors.ServiceUnavailable).WithMessage("rate limit cache is unavailable")
	}

	ctxCache := ctx
	if l.redisTimeout > 0 {
		var cancel context.CancelFunc
		ctxCache, cancel = context.WithTimeout(ctx, l.redisTimeout)
		defer cancel()
	}

	count, err := l.cache.Incr(ctxCache, key)
	if err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
	}
	if count == 1 {
		if err := l.cache.Expire(ctxCache, key, window); err != nil {
			return pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
		}
	}
	if int(count) > max {
		return pkgerrors.New(pkgerrors.TooManyRequests).WithMessage(fmt.Sprintf("rate limit exceeded for %s", key))
	}
	return nil
}

// RateLimitPolicy sets per-window caps; zero disables a dimension.
type RateLimitPolicy struct {
	Window  time.Duration `yaml:"window"`
	UserMax int           `yaml:"userMax"`
	IPMax   int           `yaml:"ipMax"`
}

// RateLimitMiddleware limits a route by client IP and, after AuthMiddleware, by user.
// Cache failures are logged and the request is let through.
func RateLimitMiddleware(limiter *RateLimiter, routeKey string, policy RateLimitPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || policy.Window <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		if policy.IPMax > 0 {
			key := fmt.Sprintf("%sip:%s:%s", rateKeyPrefix, c.ClientIP(), routeKey)
			if !allowOrAbort(c, limiter.Allow(ctx, key, policy.IPMax, policy.Window)) {
				return
			}
		}
		if policy.UserMax > 0 {
			if userID, ok := CurrentUserID(c); ok {
				key := fmt.Sprintf("%suser:%d:%s", rateKeyPrefix, userID, routeKey)
				if !allowOrAbort(c, limiter.Allow(ctx, key, policy.UserMax, policy.Window)) {
					return
				}
			}
		}

		c.Next()
	}
}

func allowOrAbort(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if pkgerrors.Is(err, pkgerrors.TooManyRequests) {
		response.AbortWithError(c, err)
		return false
	}
	logger.Warn(c.Request.Context(), "rate limit check skipped", zap.Error(err))
	return true
}

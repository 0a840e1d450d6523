package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

// RateLimiter is a fixed-window counter per caller and route kept in Redis.
// It fails open when Redis is unreachable.
type RateLimiter struct {
	log    *logger.Logger
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRateLimiter(log *logger.Logger, rdb redis.Cmdable, perWindow int, window time.Duration) *RateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	return &RateLimiter{
		log:    log.With("middleware", "RateLimiter"),
		rdb:    rdb,
		limit:  perWindow,
		window: window,
		prefix: "memequiz:rl",
		now:    time.Now,
	}
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	if rl == nil || rl.rdb == nil || rl.limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		caller := c.ClientIP()
		if id := ctxutil.UserID(c.Request.Context()); id != nil {
			caller = "u:" + id.String()
		}
		bucket := rl.now().Unix() / int64(rl.window/time.Second)
		key := fmt.Sprintf("%s:%s:%s:%d", rl.prefix, c.FullPath(), caller, bucket)

		count, err := rl.incr(c.Request.Context(), key)
		if err != nil {
			rl.log.Warn("Rate limit store unavailable, allowing request", "error", err)
			c.Next()
			return
		}
		remaining := rl.limit - int(count)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		if remaining < 0 {
			c.Header("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

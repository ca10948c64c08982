package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/pkg/response"
	"github.com/redis/go-redis/v9"
)

// limitScript bumps the window counter and arms its expiry in one step. A
// counter left without a TTL gets one on its next hit.
var limitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RateLimiter is a fixed-window counter in Redis. A nil client disables it.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit allows maxRequests per window for each user, or each client IP when
// the request is anonymous.
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil || maxRequests <= 0 {
			return c.Next()
		}

		subject := GetUserID(c)
		if subject == "" {
			subject = "ip:" + c.IP()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, subject)
		ctx := c.UserContext()

		res, err := limitScript.Run(ctx, rl.redis, []string{key}, window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			// fail open
			logger.Warn("Rate limiter unavailable", logger.Fields{"key": key, "error": fmt.Sprint(err)})
			return c.Next()
		}
		count, ttl := res[0], time.Duration(res[1])*time.Millisecond

		if count > int64(maxRequests) {
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// WriteLimit guards catalog mutations
func (rl *RateLimiter) WriteLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("write", maxPerMin, time.Minute)
}

// JobsLimit guards pitch-table job creation
func (rl *RateLimiter) JobsLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("jobs", maxPerHour, time.Hour)
}

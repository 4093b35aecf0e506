package middleware

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"quickforge/internal/models"
	"quickforge/internal/observability"
)

// FailureMode controls behavior when Redis is unavailable.
type FailureMode int

const (
	// FailOpen allows requests through when the limiter backend is down.
	FailOpen FailureMode = iota
	// FailClosed rejects requests when the limiter backend is down.
	FailClosed
)

// RateLimitConfig configures the Redis-backed rate limiter.
type RateLimitConfig struct {
	Max         int
	Window      time.Duration
	KeyPrefix   string
	FailureMode FailureMode
	// Env disables the limiter entirely in test and development.
	Env string
}

// RateLimit returns a fixed-window rate limiter backed by Redis
// INCR+EXPIRE. The key is the authenticated user id when present,
// otherwise the client IP.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) fiber.Handler {
	if cfg.Env == "test" || cfg.Env == "development" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		if rdb == nil {
			if cfg.FailureMode == FailClosed {
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					models.NewDependencyError("rate limiter unavailable", nil))
			}
			return c.Next()
		}

		ident := c.IP()
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			ident = userID
		}
		key := fmt.Sprintf("ratelimit:%s:%s", cfg.KeyPrefix, ident)

		ctx := c.UserContext()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			observability.RedisErrors.Inc()
			slog.WarnContext(ctx, "rate limiter redis error", "error", err)
			if cfg.FailureMode == FailClosed {
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					models.NewDependencyError("rate limiter unavailable", err))
			}
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, cfg.Window)
		}

		if count > int64(cfg.Max) {
			c.Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Code:    models.CodeRateLimited,
			})
		}

		return c.Next()
	}
}

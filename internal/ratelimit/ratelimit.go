// Package ratelimit gates requests before business logic runs. Budgets are
// tracked per client IP and route in Redis with a rolling one-minute window.
package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wizrdcoder/blog-api/internal/auth/session"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

type Limiter struct {
	store *session.Store
	log   *zap.Logger
}

func New(store *session.Store, log *zap.Logger) *Limiter {
	return &Limiter{store: store, log: log}
}

// Limit returns middleware enforcing at most requestsPerMinute requests per
// (client IP, route path) pair. Exceeding the budget yields 429 with a
// Retry-After header read from the counter's remaining TTL. A Redis failure
// is a 500, not an open gate.
func (l *Limiter) Limit(requestsPerMinute int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("%s%s:%s", constant.RateLimitKeyPrefix, c.IP(), c.Path())

		count, ttl, err := l.store.IncrementOrInit(c.UserContext(), key, constant.RateLimitWindow)
		if err != nil {
			l.log.Error("rate limit store unavailable", zap.String("key", key), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}

		if count > int64(requestsPerMinute) {
			retryAfter := int64(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = int64(constant.RateLimitWindow.Seconds())
			}
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fmt.Sprintf(
					"Rate limit exceeded. Maximum %d requests per minute. Try again in %d seconds.",
					requestsPerMinute, retryAfter,
				),
			})
		}

		return c.Next()
	}
}

package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	autherror "github.com/wizrdcoder/blog-api/internal/errors"
)

const (
	localUser           = "user"
	localAccessToken    = "accessToken"
	localTokenExpiresAt = "tokenExpiresAt"
)

// RequireUser resolves the bearer token to an active user and stashes both in
// request locals for downstream handlers.
func (h *AuthHandler) RequireUser(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	user, claims, err := h.userService.GetCurrentUser(c.UserContext(), token)
	if err != nil {
		return h.errorResponse(c, err)
	}

	c.Locals(localUser, user)
	c.Locals(localAccessToken, token)
	c.Locals(localTokenExpiresAt, claims.ExpiresAt.Time)

	return c.Next()
}

// RequireRole gates a route on a role. Must run after RequireUser. Admins
// pass every check.
func (h *AuthHandler) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		if !user.HasRole(role) {
			return h.errorResponse(c, autherror.ErrPermissionDenied)
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentToken(c *fiber.Ctx) (string, time.Time) {
	token, _ := c.Locals(localAccessToken).(string)
	expiresAt, _ := c.Locals(localTokenExpiresAt).(time.Time)
	return token, expiresAt
}

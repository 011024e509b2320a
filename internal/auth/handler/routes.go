package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wizrdcoder/blog-api/internal/ratelimit"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

// RateLimits carries the per-minute ceilings for the two route classes.
type RateLimits struct {
	Auth int
	API  int
}

func RegisterRoutes(app *fiber.App, h *AuthHandler, limiter *ratelimit.Limiter, limits RateLimits) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/register", limiter.Limit(limits.Auth), h.Register)
	auth.Post("/login", limiter.Limit(limits.Auth), h.Login)
	auth.Post("/logout", h.RequireUser, h.Logout)
	auth.Get("/me", limiter.Limit(limits.API), h.RequireUser, h.Me)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/verify", h.Verify)
	auth.Post("/password/reset-request", h.RequestPasswordReset)
	auth.Post("/password/reset", h.ResetPassword)

	admin := app.Group("/api/v1/admin", h.RequireUser, h.RequireRole(constant.RoleAdmin))
	admin.Delete("/user/:id/sessions", h.ForceLogout)
}

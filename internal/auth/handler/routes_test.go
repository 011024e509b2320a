package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wizrdcoder/blog-api/internal/auth/domain"
	"github.com/wizrdcoder/blog-api/internal/auth/handler"
	"github.com/wizrdcoder/blog-api/internal/auth/session"
	"github.com/wizrdcoder/blog-api/internal/ratelimit"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

func newRoutedApp(t *testing.T, ctrl *gomock.Controller) (*fiber.App, *handlerFixture) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newHandlerFixture(ctrl)
	limiter := ratelimit.New(session.NewStore(rdb), zap.NewNop())

	app := fiber.New()
	handler.RegisterRoutes(app, f.handler, limiter, handler.RateLimits{Auth: 100, API: 100})

	return app, f
}

// TestRegisterRoutes verifies that every route is mounted where clients
// expect it.
func TestRegisterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app, _ := newRoutedApp(t, ctrl)

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/auth/register"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/auth/refresh"},
		{http.MethodPost, "/api/v1/auth/verify"},
		{http.MethodPost, "/api/v1/auth/password/reset-request"},
		{http.MethodPost, "/api/v1/auth/password/reset"},
		{http.MethodDelete, "/api/v1/admin/user/some-id/sessions"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s_exists", tc.method, tc.path), func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			// We only care that the route exists. A 404 means it doesn't.
			// The actual handlers will return other codes (e.g., 400 Bad
			// Request for a missing body), which is fine for this check.
			assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

// TestRequireRoleMiddleware provides focused testing for the admin-only
// endpoint.
func TestRequireRoleMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app, f := newRoutedApp(t, ctrl)

	adminRoute := "/api/v1/admin/user/target-user-id/sessions"

	accessClaims := func(email string) *domain.AccessClaims {
		return &domain.AccessClaims{
			TokenType: domain.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   email,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	t.Run("fails without auth header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("fails with malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		req.Header.Set("Authorization", "BearerNoSpace")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("fails for non-admin user", func(t *testing.T) {
		member := &domain.User{
			ID:       "member-id",
			Email:    "member@example.com",
			Role:     constant.RoleUser,
			IsActive: true,
		}

		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "user-token").Return(false, nil)
		f.tokens.EXPECT().ParseAccessToken("user-token").Return(accessClaims(member.Email), nil)
		f.repo.EXPECT().GetByEmail(gomock.Any(), member.Email).Return(member, nil)

		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		req.Header.Set("Authorization", "Bearer user-token")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("succeeds for admin user", func(t *testing.T) {
		admin := &domain.User{
			ID:       "admin-id",
			Email:    "admin@example.com",
			Role:     constant.RoleAdmin,
			IsActive: true,
		}

		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "admin-token").Return(false, nil)
		f.tokens.EXPECT().ParseAccessToken("admin-token").Return(accessClaims(admin.Email), nil)
		f.repo.EXPECT().GetByEmail(gomock.Any(), admin.Email).Return(admin, nil)
		f.sessions.EXPECT().DeleteRefreshToken(gomock.Any(), "target-user-id").Return(nil)
		f.sessions.EXPECT().MarkTokensInvalid(gomock.Any(), "target-user-id").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, adminRoute, nil)
		req.Header.Set("Authorization", "Bearer admin-token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// TestAuthRouteRateLimit exercises the tighter budget on credential routes.
func TestAuthRouteRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newHandlerFixture(ctrl)
	limiter := ratelimit.New(session.NewStore(rdb), zap.NewNop())

	app := fiber.New()
	handler.RegisterRoutes(app, f.handler, limiter, handler.RateLimits{Auth: 5, API: 60})

	// Login attempts past the fifth are refused before credentials are read;
	// no repository calls are expected.
	var lastStatus int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		lastStatus = resp.StatusCode
		if i < 5 {
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		}
	}

	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}

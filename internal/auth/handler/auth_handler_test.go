package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wizrdcoder/blog-api/internal/auth/domain"
	"github.com/wizrdcoder/blog-api/internal/auth/dto"
	"github.com/wizrdcoder/blog-api/internal/auth/handler"
	"github.com/wizrdcoder/blog-api/internal/auth/service"
	"github.com/wizrdcoder/blog-api/internal/mocks"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

type handlerFixture struct {
	handler  *handler.AuthHandler
	repo     *mocks.MockUserRepository
	sessions *mocks.MockSessionStore
	tokens   *mocks.MockTokenGenerator
}

func newHandlerFixture(ctrl *gomock.Controller) *handlerFixture {
	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockSessions := mocks.NewMockSessionStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)

	userService := service.NewUserService(mockRepo, mockSessions, mockTokens, nil, zap.NewNop())

	return &handlerFixture{
		handler:  handler.NewAuthHandler(userService, zap.NewNop(), false),
		repo:     mockRepo,
		sessions: mockSessions,
		tokens:   mockTokens,
	}
}

func TestRegisterEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/register", f.handler.Register)

	t.Run("success", func(t *testing.T) {
		input := dto.RegisterInput{
			Email:           "test@example.com",
			Username:        "testuser",
			Password:        "password123",
			ConfirmPassword: "password123",
		}

		f.repo.EXPECT().GetByEmail(gomock.Any(), input.Email).Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		body, _ := json.Marshal(input)
		req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	})

	t.Run("bad request - invalid json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/register", bytes.NewReader([]byte("{invalid")))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad request - password mismatch", func(t *testing.T) {
		input := dto.RegisterInput{
			Email:           "test@example.com",
			Username:        "testuser",
			Password:        "password123",
			ConfirmPassword: "different123",
		}

		body, _ := json.Marshal(input)
		req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad request - username with invalid characters", func(t *testing.T) {
		input := dto.RegisterInput{
			Email:           "test@example.com",
			Username:        "bad user!",
			Password:        "password123",
			ConfirmPassword: "password123",
		}

		body, _ := json.Marshal(input)
		req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad request - email already in use", func(t *testing.T) {
		input := dto.RegisterInput{
			Email:           "taken@example.com",
			Username:        "testuser",
			Password:        "password123",
			ConfirmPassword: "password123",
		}

		f.repo.EXPECT().GetByEmail(gomock.Any(), input.Email).
			Return(&domain.User{ID: "existing", Email: input.Email}, nil)

		body, _ := json.Marshal(input)
		req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestLoginEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/login", f.handler.Login)

	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	user := &domain.User{
		ID:           "user-id",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	t.Run("success", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.repo.EXPECT().UpdateLastLogin(gomock.Any(), user.ID).Return(nil)
		f.tokens.EXPECT().GenerateAccessToken(user).Return("access-token", time.Now().Add(30*time.Minute), nil)
		f.tokens.EXPECT().GenerateRefreshToken(user.Email).Return("refresh-token", nil)
		f.sessions.EXPECT().StoreRefreshToken(gomock.Any(), user.ID, "refresh-token", constant.RefreshTokenTTL).Return(nil)
		f.tokens.EXPECT().AccessTokenExpiry().Return(30 * time.Minute)

		body, _ := json.Marshal(dto.LoginInput{Username: user.Email, Password: password})
		req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var tokens dto.TokenResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
		assert.Equal(t, "access-token", tokens.AccessToken)
		assert.Equal(t, "refresh-token", tokens.RefreshToken)
		assert.Equal(t, constant.TokenTypeBearer, tokens.TokenType)
		assert.Equal(t, int64(1800), tokens.ExpiresIn)
	})

	t.Run("unauthorized - wrong password", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)

		body, _ := json.Marshal(dto.LoginInput{Username: user.Email, Password: "wrong-password"})
		req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unauthorized - unknown email", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

		body, _ := json.Marshal(dto.LoginInput{Username: "nobody@example.com", Password: password})
		req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("accepts form-encoded credentials", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.repo.EXPECT().UpdateLastLogin(gomock.Any(), user.ID).Return(nil)
		f.tokens.EXPECT().GenerateAccessToken(user).Return("access-token", time.Now().Add(30*time.Minute), nil)
		f.tokens.EXPECT().GenerateRefreshToken(user.Email).Return("refresh-token", nil)
		f.sessions.EXPECT().StoreRefreshToken(gomock.Any(), user.ID, "refresh-token", constant.RefreshTokenTTL).Return(nil)
		f.tokens.EXPECT().AccessTokenExpiry().Return(30 * time.Minute)

		form := "username=test%40example.com&password=password123"
		req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte(form)))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("bad request - missing password", func(t *testing.T) {
		body, _ := json.Marshal(dto.LoginInput{Username: user.Email})
		req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/refresh", f.handler.Refresh)

	user := &domain.User{
		ID:       "user-id",
		Email:    "test@example.com",
		IsActive: true,
	}
	claims := &domain.RefreshClaims{
		TokenType: domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.Email,
		},
	}

	t.Run("success", func(t *testing.T) {
		f.tokens.EXPECT().ParseRefreshToken("valid-token").Return(claims, nil)
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.sessions.EXPECT().GetRefreshToken(gomock.Any(), user.ID).Return("valid-token", nil)
		f.tokens.EXPECT().GenerateAccessToken(user).Return("new-access", time.Now().Add(30*time.Minute), nil)
		f.tokens.EXPECT().GenerateRefreshToken(user.Email).Return("new-refresh", nil)
		f.sessions.EXPECT().DeleteRefreshToken(gomock.Any(), user.ID).Return(nil)
		f.sessions.EXPECT().StoreRefreshToken(gomock.Any(), user.ID, "new-refresh", constant.RefreshTokenTTL).Return(nil)
		f.tokens.EXPECT().AccessTokenExpiry().Return(30 * time.Minute)

		body, _ := json.Marshal(dto.RefreshInput{RefreshToken: "valid-token"})
		req := httptest.NewRequest("POST", "/refresh", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("unauthorized - replayed token", func(t *testing.T) {
		f.tokens.EXPECT().ParseRefreshToken("old-token").Return(claims, nil)
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.sessions.EXPECT().GetRefreshToken(gomock.Any(), user.ID).Return("current-token", nil)

		body, _ := json.Marshal(dto.RefreshInput{RefreshToken: "old-token"})
		req := httptest.NewRequest("POST", "/refresh", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unauthorized - expired token", func(t *testing.T) {
		f.tokens.EXPECT().ParseRefreshToken("expired-token").Return(nil, jwt.ErrTokenExpired)

		body, _ := json.Marshal(dto.RefreshInput{RefreshToken: "expired-token"})
		req := httptest.NewRequest("POST", "/refresh", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bad request - missing token", func(t *testing.T) {
		body, _ := json.Marshal(dto.RefreshInput{})
		req := httptest.NewRequest("POST", "/refresh", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/logout", f.handler.RequireUser, f.handler.Logout)

	user := &domain.User{
		ID:       "user-id",
		Email:    "test@example.com",
		IsActive: true,
	}
	claims := &domain.AccessClaims{
		TokenType: domain.TokenTypeAccess,
		UserID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}

	t.Run("success", func(t *testing.T) {
		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "access-token").Return(false, nil)
		f.tokens.EXPECT().ParseAccessToken("access-token").Return(claims, nil)
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.sessions.EXPECT().BlacklistToken(gomock.Any(), "access-token", gomock.Any()).Return(nil)
		f.sessions.EXPECT().DeleteRefreshToken(gomock.Any(), user.ID).Return(nil)

		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer access-token")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("unauthorized - no token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/logout", nil)

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unauthorized - blacklisted token", func(t *testing.T) {
		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "revoked-token").Return(true, nil)

		req := httptest.NewRequest("POST", "/logout", nil)
		req.Header.Set("Authorization", "Bearer revoked-token")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMeEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Get("/me", f.handler.RequireUser, f.handler.Me)

	user := &domain.User{
		ID:       "user-id",
		Email:    "test@example.com",
		Username: "testuser",
		IsActive: true,
	}
	claims := &domain.AccessClaims{
		TokenType: domain.TokenTypeAccess,
		UserID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}

	t.Run("success", func(t *testing.T) {
		withProfile := &domain.User{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			IsActive: true,
			Profile:  &domain.Profile{Bio: "about me"},
		}

		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "access-token").Return(false, nil)
		f.tokens.EXPECT().ParseAccessToken("access-token").Return(claims, nil)
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.repo.EXPECT().GetByIDWithProfile(gomock.Any(), user.ID).Return(withProfile, nil)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer access-token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out dto.UserOutput
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, user.Email, out.Email)
		assert.Equal(t, "about me", out.Bio)
	})

	t.Run("unauthorized - expired token", func(t *testing.T) {
		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "expired-token").Return(false, nil)
		f.tokens.EXPECT().ParseAccessToken("expired-token").Return(nil, jwt.ErrTokenExpired)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer expired-token")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/verify", f.handler.Verify)

	t.Run("valid token", func(t *testing.T) {
		payload := &dto.TokenPayload{
			Sub:  "test@example.com",
			Exp:  time.Now().Add(30 * time.Minute).Unix(),
			Type: "access",
		}

		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "good-token").Return(false, nil)
		f.tokens.EXPECT().ParsePayload("good-token").Return(payload, nil)

		body, _ := json.Marshal(dto.TokenVerifyInput{Token: "good-token"})
		req := httptest.NewRequest("POST", "/verify", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.TokenVerifyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Valid)
		assert.Equal(t, "test@example.com", result.Payload.Sub)
	})

	t.Run("revoked token is still a 200", func(t *testing.T) {
		f.sessions.EXPECT().IsTokenBlacklisted(gomock.Any(), "revoked-token").Return(true, nil)

		body, _ := json.Marshal(dto.TokenVerifyInput{Token: "revoked-token"})
		req := httptest.NewRequest("POST", "/verify", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.TokenVerifyResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.False(t, result.Valid)
		assert.Equal(t, "Token has been revoked", result.Error)
	})
}

func TestPasswordResetRequestEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/password/reset-request", f.handler.RequestPasswordReset)

	doRequest := func(t *testing.T, email string) (int, map[string]string) {
		t.Helper()
		body, _ := json.Marshal(dto.PasswordResetRequestInput{Email: email})
		req := httptest.NewRequest("POST", "/password/reset-request", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		return resp.StatusCode, payload
	}

	user := &domain.User{ID: "user-id", Email: "known@example.com", IsActive: true}

	t.Run("known email", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
		f.tokens.EXPECT().GenerateResetToken(user.Email, user.ID).Return("reset-token", nil)
		f.sessions.EXPECT().StoreResetToken(gomock.Any(), user.ID, "reset-token", constant.ResetTokenTTL).Return(nil)

		status, payload := doRequest(t, user.Email)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "If the email exists, a reset link has been sent", payload["message"])
		// The token itself never appears in the response.
		assert.NotContains(t, payload, "token")
	})

	t.Run("unknown email gets the identical response", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "unknown@example.com").Return(nil, nil)

		status, payload := doRequest(t, "unknown@example.com")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "If the email exists, a reset link has been sent", payload["message"])
	})
}

func TestPasswordResetEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newHandlerFixture(ctrl)

	app := fiber.New()
	app.Post("/password/reset", f.handler.ResetPassword)

	user := &domain.User{ID: "user-id", Email: "test@example.com", IsActive: true}
	claims := &domain.ResetClaims{
		TokenType: domain.TokenTypeReset,
		UserID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.Email,
		},
	}

	t.Run("success", func(t *testing.T) {
		f.tokens.EXPECT().ParseResetToken("reset-token").Return(claims, nil)
		f.sessions.EXPECT().GetResetToken(gomock.Any(), user.ID).Return("reset-token", nil)
		f.repo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
		f.repo.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).Return(nil)
		f.sessions.EXPECT().DeleteResetToken(gomock.Any(), user.ID).Return(nil)
		f.sessions.EXPECT().MarkTokensInvalid(gomock.Any(), user.ID).Return(nil)

		body, _ := json.Marshal(dto.PasswordResetInput{
			Token:           "reset-token",
			NewPassword:     "newpassword123",
			ConfirmPassword: "newpassword123",
		})
		req := httptest.NewRequest("POST", "/password/reset", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("bad request - invalid token", func(t *testing.T) {
		f.tokens.EXPECT().ParseResetToken("garbage").Return(nil, jwt.ErrTokenMalformed)

		body, _ := json.Marshal(dto.PasswordResetInput{
			Token:           "garbage",
			NewPassword:     "newpassword123",
			ConfirmPassword: "newpassword123",
		})
		req := httptest.NewRequest("POST", "/password/reset", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad request - confirmation mismatch", func(t *testing.T) {
		body, _ := json.Marshal(dto.PasswordResetInput{
			Token:           "reset-token",
			NewPassword:     "newpassword123",
			ConfirmPassword: "different123",
		})
		req := httptest.NewRequest("POST", "/password/reset", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

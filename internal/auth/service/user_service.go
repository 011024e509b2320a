package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wizrdcoder/blog-api/internal/auth/domain"
	"github.com/wizrdcoder/blog-api/internal/auth/dto"
	"github.com/wizrdcoder/blog-api/internal/auth/session"
	autherror "github.com/wizrdcoder/blog-api/internal/errors"
	"github.com/wizrdcoder/blog-api/internal/events"
	"github.com/wizrdcoder/blog-api/internal/hash"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

const eventPublishTimeout = 5 * time.Second

// UserService orchestrates the auth lifecycle across the identity repository
// (relational), the session store (key-value), and the token codec. There is
// no transaction spanning the two stores; the session store record is the
// source of truth for refresh and reset token validity.
type UserService struct {
	repo     domain.UserRepository
	sessions domain.SessionStore
	tokens   TokenGenerator
	events   events.Publisher
	log      *zap.Logger
}

func NewUserService(
	repo domain.UserRepository,
	sessions domain.SessionStore,
	tokens TokenGenerator,
	publisher events.Publisher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		events:   publisher,
		log:      log,
	}
}

// Register creates the identity only. Session creation is deliberately left
// to login.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	passwordHash, err := hash.Password(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: passwordHash,
		Role:         constant.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(user.ID, map[string]interface{}{
		"type":     events.EventUserRegistered,
		"user_id":  user.ID,
		"username": user.Username,
	})

	return user, nil
}

// Login verifies credentials and opens the user's single active session. The
// refresh token stored here overwrites any previous one.
func (s *UserService) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// Absent user and wrong password are indistinguishable to the caller.
	if user == nil || !hash.Check(user.PasswordHash, password) {
		return nil, autherror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, autherror.ErrInactiveAccount
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.StoreRefreshToken(ctx, user.ID, refreshToken, constant.RefreshTokenTTL); err != nil {
		return nil, err
	}

	s.publish(user.ID, map[string]interface{}{
		"type":     events.EventUserLoggedIn,
		"user_id":  user.ID,
		"username": user.Username,
	})

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    constant.TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTokenExpiry().Seconds()),
		ExpiresAt:    expiresAt,
	}, nil
}

// GetCurrentUser resolves a bearer access token to an active identity,
// rejecting blacklisted, malformed, expired, or mis-typed tokens.
func (s *UserService) GetCurrentUser(ctx context.Context, rawToken string) (*domain.User, *domain.AccessClaims, error) {
	blacklisted, err := s.sessions.IsTokenBlacklisted(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}
	if blacklisted {
		return nil, nil, autherror.ErrTokenRevoked
	}

	claims, err := s.tokens.ParseAccessToken(rawToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, autherror.ErrTokenExpired
		}
		return nil, nil, autherror.ErrInvalidToken
	}

	user, err := s.repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, autherror.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, nil, autherror.ErrInactiveAccount
	}

	return user, claims, nil
}

// Logout blacklists the presented access token for its remaining lifetime and
// drops the user's refresh session. Safe to repeat with the same token.
func (s *UserService) Logout(ctx context.Context, userID, rawToken string, tokenExpiresAt time.Time) error {
	remaining := time.Until(tokenExpiresAt)
	if err := s.sessions.BlacklistToken(ctx, rawToken, remaining); err != nil {
		return err
	}
	return s.sessions.DeleteRefreshToken(ctx, userID)
}

// Refresh rotates the session: the presented refresh token must exactly match
// the stored one, then both tokens are reissued and the old record replaced.
// A concurrent request landing in the delete-store gap is rejected, never
// served a stale session.
func (s *UserService) Refresh(ctx context.Context, rawToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokens.ParseRefreshToken(rawToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, autherror.ErrInvalidToken
	}

	user, err := s.repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, autherror.ErrInvalidToken
	}

	stored, err := s.sessions.GetRefreshToken(ctx, user.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, autherror.ErrTokenRevoked
		}
		return nil, err
	}
	// An exact-string mismatch means the token was rotated out; a replayed
	// old token lands here.
	if stored != rawToken {
		return nil, autherror.ErrTokenRevoked
	}

	accessToken, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.tokens.GenerateRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.DeleteRefreshToken(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.StoreRefreshToken(ctx, user.ID, newRefreshToken, constant.RefreshTokenTTL); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    constant.TokenTypeBearer,
		ExpiresIn:    int64(s.tokens.AccessTokenExpiry().Seconds()),
		ExpiresAt:    expiresAt,
	}, nil
}

// Verify reports token validity as data. Only an infrastructure failure
// returns an error; every bad-token outcome is a valid:false response.
func (s *UserService) Verify(ctx context.Context, token string) (*dto.TokenVerifyResponse, error) {
	blacklisted, err := s.sessions.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return &dto.TokenVerifyResponse{Valid: false, Error: "Token has been revoked"}, nil
	}

	payload, err := s.tokens.ParsePayload(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return &dto.TokenVerifyResponse{Valid: false, Error: "Token has expired"}, nil
		}
		return &dto.TokenVerifyResponse{Valid: false, Error: "Invalid token"}, nil
	}

	// The codec already enforced exp; compare once more against the clock so
	// validity never rests on a single check.
	if payload.Exp > 0 && time.Now().Unix() > payload.Exp {
		return &dto.TokenVerifyResponse{Valid: false, Error: "Token has expired"}, nil
	}

	return &dto.TokenVerifyResponse{Valid: true, Payload: payload, Error: ""}, nil
}

// RequestPasswordReset issues and stores a reset token when the email is
// known. Callers receive no signal either way; the acknowledgment wording is
// identical in both branches.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	resetToken, err := s.tokens.GenerateResetToken(user.Email, user.ID)
	if err != nil {
		return err
	}
	if err := s.sessions.StoreResetToken(ctx, user.ID, resetToken, constant.ResetTokenTTL); err != nil {
		return err
	}

	// The token reaches the user through the mail pipeline, never the HTTP
	// response.
	s.publish(user.ID, map[string]interface{}{
		"type":        events.EventPasswordResetRequested,
		"user_id":     user.ID,
		"email":       user.Email,
		"reset_token": resetToken,
	})

	return nil
}

// ResetPassword consumes a reset token: the stored record must match the
// presented token exactly, and the claim's identity must line up with the
// loaded user before the hash is replaced.
func (s *UserService) ResetPassword(ctx context.Context, input dto.PasswordResetInput) error {
	claims, err := s.tokens.ParseResetToken(input.Token)
	if err != nil {
		return autherror.ErrResetTokenInvalid
	}

	stored, err := s.sessions.GetResetToken(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return autherror.ErrResetTokenInvalid
		}
		return err
	}
	if stored != input.Token {
		return autherror.ErrResetTokenInvalid
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.Email != claims.Subject {
		return autherror.ErrUserNotFound
	}

	passwordHash, err := hash.Password(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	// Single use: the record goes away before anything else can present the
	// same token.
	if err := s.sessions.DeleteResetToken(ctx, user.ID); err != nil {
		return err
	}
	if err := s.sessions.MarkTokensInvalid(ctx, user.ID); err != nil {
		s.log.Warn("failed to write token invalidate marker",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	s.publish(user.ID, map[string]interface{}{
		"type":    events.EventPasswordChanged,
		"user_id": user.ID,
	})

	return nil
}

// GetProfile loads the identity with its profile for the /me endpoint.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByIDWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}
	return user, nil
}

// ForceLogout drops a user's refresh session and flags outstanding tokens.
// Admin-only at the route layer.
func (s *UserService) ForceLogout(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteRefreshToken(ctx, userID); err != nil {
		return err
	}
	return s.sessions.MarkTokensInvalid(ctx, userID)
}

func (s *UserService) publish(key string, event map[string]interface{}) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.log.Warn("event publish failed",
			zap.String("event", event["type"].(string)), zap.Error(err))
	}
}

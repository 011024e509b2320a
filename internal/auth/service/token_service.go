package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/wizrdcoder/blog-api/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wizrdcoder/blog-api/internal/auth/domain"
	"github.com/wizrdcoder/blog-api/internal/auth/dto"
	"github.com/wizrdcoder/blog-api/pkg/constant"
)

type TokenGenerator interface {
	GenerateAccessToken(user *domain.User) (string, time.Time, error)
	GenerateRefreshToken(email string) (string, error)
	GenerateResetToken(email, userID string) (string, error)
	ParseAccessToken(tokenString string) (*domain.AccessClaims, error)
	ParseRefreshToken(tokenString string) (*domain.RefreshClaims, error)
	ParseResetToken(tokenString string) (*domain.ResetClaims, error)
	ParsePayload(tokenString string) (*dto.TokenPayload, error)
	AccessTokenExpiry() time.Duration
}

// TokenService signs and parses bearer tokens. It is pure: no I/O, no state
// beyond the signing key and configured lifetimes.
type TokenService struct {
	secret            []byte
	method            jwt.SigningMethod
	accessTokenExpiry time.Duration
}

var ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

func NewTokenService(secret, algorithm string, accessMinutes int) (*TokenService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %s is not an HMAC method", ErrUnsupportedAlgorithm, algorithm)
	}

	return &TokenService{
		secret:            []byte(secret),
		method:            method,
		accessTokenExpiry: time.Duration(accessMinutes) * time.Minute,
	}, nil
}

func (ts *TokenService) AccessTokenExpiry() time.Duration {
	return ts.accessTokenExpiry
}

func (ts *TokenService) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.accessTokenExpiry)

	claims := domain.AccessClaims{
		TokenType:   domain.TokenTypeAccess,
		Role:        user.Role,
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (ts *TokenService) GenerateRefreshToken(email string) (string, error) {
	now := time.Now()

	claims := domain.RefreshClaims{
		TokenType: domain.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(constant.RefreshTokenTTL)),
		},
	}

	return jwt.NewWithClaims(ts.method, claims).SignedString(ts.secret)
}

func (ts *TokenService) GenerateResetToken(email, userID string) (string, error) {
	now := time.Now()

	claims := domain.ResetClaims{
		TokenType: domain.TokenTypeReset,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(constant.ResetTokenTTL)),
		},
	}

	return jwt.NewWithClaims(ts.method, claims).SignedString(ts.secret)
}

func (ts *TokenService) ParseAccessToken(tokenString string) (*domain.AccessClaims, error) {
	claims := &domain.AccessClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != domain.TokenTypeAccess {
		return nil, fmt.Errorf("not an access token")
	}
	return claims, nil
}

func (ts *TokenService) ParseRefreshToken(tokenString string) (*domain.RefreshClaims, error) {
	claims := &domain.RefreshClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		return nil, fmt.Errorf("not a refresh token")
	}
	return claims, nil
}

func (ts *TokenService) ParseResetToken(tokenString string) (*domain.ResetClaims, error) {
	claims := &domain.ResetClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != domain.TokenTypeReset {
		return nil, fmt.Errorf("not a reset token")
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, fmt.Errorf("reset token missing identity claims")
	}
	return claims, nil
}

// payloadClaims is the union of all claim variants, used only to surface a
// decoded payload through the verify endpoint.
type payloadClaims struct {
	TokenType   domain.TokenType `json:"type"`
	Role        string           `json:"role"`
	UserID      string           `json:"user_id"`
	Username    string           `json:"username"`
	IsSuperuser bool             `json:"is_superuser"`
	jwt.RegisteredClaims
}

func (ts *TokenService) ParsePayload(tokenString string) (*dto.TokenPayload, error) {
	claims := &payloadClaims{}
	if err := ts.parse(tokenString, claims); err != nil {
		return nil, err
	}

	payload := &dto.TokenPayload{
		Sub:         claims.Subject,
		Type:        string(claims.TokenType),
		Role:        claims.Role,
		UserID:      claims.UserID,
		Username:    claims.Username,
		IsSuperuser: claims.IsSuperuser,
	}
	if claims.ExpiresAt != nil {
		payload.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		payload.Iat = claims.IssuedAt.Unix()
	}
	return payload, nil
}

func (ts *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != ts.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/wizrdcoder/blog-api/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_session_store.go -package=mocks github.com/wizrdcoder/blog-api/internal/auth/domain SessionStore

import (
	"context"
	"time"
)

// UserRepository is the relational boundary for identity records. Lookups
// return (nil, nil) when no row matches; errors are infrastructure failures.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDWithProfile(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// SessionStore is the key-value registry for live token state. Presence of a
// record is the sole source of truth for refresh/reset token validity; a miss
// surfaces as session.ErrNotFound, never as a silent empty value.
type SessionStore interface {
	StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error

	BlacklistToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)

	StoreResetToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetResetToken(ctx context.Context, userID string) (string, error)
	DeleteResetToken(ctx context.Context, userID string) error

	MarkTokensInvalid(ctx context.Context, userID string) error
}

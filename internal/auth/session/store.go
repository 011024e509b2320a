// Package session wraps Redis as the registry of live token state: current
// refresh tokens, blacklisted access tokens, pending reset tokens, and the
// advisory token-invalidate marker. A Redis outage surfaces as an error from
// every operation; it is never folded into "not found".
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wizrdcoder/blog-api/pkg/constant"
)

// ErrNotFound distinguishes a genuine miss from an infrastructure failure.
// Callers check it with errors.Is.
var ErrNotFound = errors.New("session record not found")

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.put(ctx, constant.RefreshTokenKeyPrefix+userID, token, ttl)
}

func (s *Store) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	return s.get(ctx, constant.RefreshTokenKeyPrefix+userID)
}

func (s *Store) DeleteRefreshToken(ctx context.Context, userID string) error {
	return s.delete(ctx, constant.RefreshTokenKeyPrefix+userID)
}

// BlacklistToken records an access token as revoked for the remainder of its
// lifetime. Tokens that already expired need no record; a non-positive TTL is
// a no-op.
func (s *Store) BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.put(ctx, constant.BlacklistKeyPrefix+token, "1", ttl)
}

func (s *Store) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, constant.BlacklistKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("session store exists: %w", err)
	}
	return n > 0, nil
}

func (s *Store) StoreResetToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.put(ctx, constant.PasswordResetKeyPrefix+userID, token, ttl)
}

func (s *Store) GetResetToken(ctx context.Context, userID string) (string, error) {
	return s.get(ctx, constant.PasswordResetKeyPrefix+userID)
}

func (s *Store) DeleteResetToken(ctx context.Context, userID string) error {
	return s.delete(ctx, constant.PasswordResetKeyPrefix+userID)
}

// MarkTokensInvalid writes the advisory marker that flags tokens issued
// before now as suspect.
func (s *Store) MarkTokensInvalid(ctx context.Context, userID string) error {
	marker := time.Now().UTC().Format(time.RFC3339)
	return s.put(ctx, constant.TokenInvalidateKeyPrefix+userID, marker, constant.TokenInvalidateTTL)
}

// IncrementOrInit atomically bumps a counter and, only when the key has no
// TTL yet, starts its window in the same pipeline. Two concurrent first
// requests cannot both leave the key without an expiry.
func (s *Store) IncrementOrInit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("session store increment: %w", err)
	}

	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("session store ttl: %w", err)
	}

	return incr.Val(), ttl, nil
}

func (s *Store) put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("session store set: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session store get: %w", err)
	}
	return val, nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("session store delete: %w", err)
	}
	return nil
}

package constant

import "time"

// User roles. Admin satisfies any role check.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Token lifetimes. The access token TTL is configurable and lives in config;
// these cover the fixed windows.
const (
	RefreshTokenTTL    = 30 * 24 * time.Hour
	ResetTokenTTL      = time.Hour
	TokenInvalidateTTL = 5 * time.Minute
	RateLimitWindow    = time.Minute
)

// Redis key prefixes.
const (
	RefreshTokenKeyPrefix    = "refresh_token:"
	BlacklistKeyPrefix       = "blacklist:"
	PasswordResetKeyPrefix   = "password_reset:"
	TokenInvalidateKeyPrefix = "token_invalidate:"
	RateLimitKeyPrefix       = "rate_limit:"
)

const TokenTypeBearer = "bearer"

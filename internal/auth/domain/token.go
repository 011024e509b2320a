package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeReset   TokenType = "reset"
)

// Each token type gets its own claim struct so required fields are explicit
// and validated on parse rather than pulled out of a claims map.

// AccessClaims authorize API calls. Subject is the user's email.
type AccessClaims struct {
	TokenType   TokenType `json:"type"`
	Role        string    `json:"role"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	IsSuperuser bool      `json:"is_superuser"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the subject; everything else is re-derived from
// the identity record when the token is exchanged.
type RefreshClaims struct {
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// ResetClaims authorize a single password change. Subject is the email and
// UserID pins the claim to one identity record.
type ResetClaims struct {
	TokenType TokenType `json:"type"`
	UserID    string    `json:"user_id"`
	jwt.RegisteredClaims
}

package dto

import "time"

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenPayload is the decoded claim set handed back by the verify endpoint.
// Optional claims are present only on the token types that carry them.
type TokenPayload struct {
	Sub         string `json:"sub"`
	Exp         int64  `json:"exp"`
	Iat         int64  `json:"iat"`
	Type        string `json:"type"`
	Role        string `json:"role,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

type TokenVerifyInput struct {
	Token string `json:"token" validate:"required"`
}

// TokenVerifyResponse is always a 200-level result; an invalid token is a
// valid:false payload, never an HTTP error.
type TokenVerifyResponse struct {
	Valid   bool          `json:"valid"`
	Payload *TokenPayload `json:"payload"`
	Error   string        `json:"error"`
}

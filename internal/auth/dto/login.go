package dto

// LoginInput is form-encoded for OAuth2 password-flow compatibility: the
// username field carries the email.
type LoginInput struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

package errors

import (
	"errors"
)

var (
	// Credential-path errors share deliberately generic wording so responses
	// cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveAccount    = errors.New("inactive user")

	ErrEmailAlreadyInUse    = errors.New("user with the email already exists")
	ErrUsernameAlreadyInUse = errors.New("username already taken")

	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenRevoked      = errors.New("token has been revoked")
	ErrTokenExpired      = errors.New("token has expired")
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")

	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrPermissionDenied = errors.New("not enough permissions")
)

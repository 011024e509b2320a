package domain

import (
	"time"

	"github.com/wizrdcoder/blog-api/pkg/constant"
)

type User struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Role         string
	IsActive     bool
	IsVerified   bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated only when the profile join is requested.
	Profile *Profile
}

type Profile struct {
	Bio       string
	AvatarURL string
	Website   string
	Location  string
	Company   string
}

// HasRole reports whether the user satisfies a role requirement. Admins
// satisfy every role check.
func (u *User) HasRole(role string) bool {
	return u.Role == role || u.Role == constant.RoleAdmin
}

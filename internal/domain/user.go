package domain

import "time"

// Role determines a user's permission level.
type Role string

const (
	// RoleMember is a regular shopper.
	RoleMember Role = "member"
	// RoleAdmin can manage the catalog and issue vouchers.
	RoleAdmin Role = "admin"
)

// User is an account in the system. The first user to register becomes the
// root admin.
type User struct {
	Record
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Role         Role       `json:"role"`
	IsRoot       bool       `json:"is_root,omitempty"`
	Status       Status     `json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	DeletedBy    *DeletedBy `json:"deleted_by,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is a refresh-token session bound to a user. Access tokens are
// stateless; refresh happens against the stored session.
type Session struct {
	Record
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

package model

import "time"

// Role determines what a user may do.
type Role string

const (
	// RoleAdmin may manage users and request advisory reports.
	RoleAdmin Role = "admin"
	// RoleStaff may record and browse expenses.
	RoleStaff Role = "staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is an account that records expenses.
type User struct {
	CreatedAt    time.Time
	Username     string
	PasswordHash string
	Role         Role
	ID           int64
}

// IsAdmin reports whether the user holds elevated privilege.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

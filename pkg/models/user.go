package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Usernames are stored lowercased and trimmed so
// lookups are case-insensitive.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Role constants for user accounts.
const (
	RoleAdmin      = "admin"
	RoleResearcher = "researcher"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleResearcher}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

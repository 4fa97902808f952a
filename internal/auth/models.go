package auth

import (
	"time"

	id "medivault/pkg/domain"
)

// User is an authenticatable principal. The password hash is write-only from
// the caller's perspective and never serialized.
type User struct {
	ID           id.ActorID
	Username     string
	FullName     string
	PasswordHash string `json:"-"`
	Role         id.Role
	Active       bool
	LastLogin    *time.Time
}

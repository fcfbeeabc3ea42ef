package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleClient = "client"
	RoleFinder = "finder"
	RoleAdmin  = "admin"
)

// User is the platform account. Authentication lives in the identity
// service; this engine only needs the id and role carried by the token.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"display_name,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

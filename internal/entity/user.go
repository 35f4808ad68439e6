package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role distinguishes venue accounts from administrators.
type Role string

const (
	RoleVenueUser  Role = "venue_user"
	RoleSuperAdmin Role = "super_admin"
)

// User is an account that can sign in and own procurement requests.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:",pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"role,notnull,default:'venue_user'" json:"role"`
	VenueName    string    `bun:"venue_name,nullzero" json:"venue_name,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"-"`
}

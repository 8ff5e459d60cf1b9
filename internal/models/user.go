package models

import (
	"github.com/uptrace/bun"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User rows are owned by the identity collaborator; this service only reads
// them for foreign keys and cascade deletes.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string `bun:"id,pk" json:"id"`
	Email     string `bun:"email,unique,notnull" json:"email"`
	Role      string `bun:"role,notnull" json:"role"`
	FirstName string `bun:"first_name,nullzero" json:"firstName,omitempty"`
	LastName  string `bun:"last_name,nullzero" json:"lastName,omitempty"`
	Company   string `bun:"company,nullzero" json:"company,omitempty"`
}

// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin     = "admin"
	RoleAssociate = "associate"
)

// User represents admins and associates (salespeople).
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	Email      string             `bson:"email" json:"email"`
	Username   string             `bson:"username,omitempty" json:"username,omitempty"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role       string             `bson:"role" json:"role"` // admin | associate
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

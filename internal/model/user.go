package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes regular library members from librarians.
type Role int

const (
	// RoleMember can browse the catalog and borrow books.
	RoleMember Role = 0
	// RoleLibrarian manages the catalog and loan returns.
	RoleLibrarian Role = 1
)

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleLibrarian:
		return "librarian"
	default:
		return "member"
	}
}

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// User represents a library account. PasswordHash holds the bcrypt
// digest of the credential; the plaintext is never persisted.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

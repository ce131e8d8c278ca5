package model

import "github.com/google/uuid"

// TokenManager issues and verifies signed identity tokens.
type TokenManager interface {
	Issue(userID uuid.UUID) (string, error)
	// Verify returns the embedded user id, ErrTokenMalformed when the
	// token cannot be parsed or its signature does not validate, and
	// ErrTokenExpired when the embedded expiry has passed.
	Verify(token string) (uuid.UUID, error)
}

package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/irozhkov/library-server/internal/model"
)

func signWithExpiry(t *testing.T, secret string, userID uuid.UUID, issuedAt, expiresAt time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWT_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	signed, err := j.Issue(u)
	require.NoError(t, err)
	got, err := j.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_ValidBeforeExpiry(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	// Issued an hour ago, so the token is 23 hours from expiry.
	issued := time.Now().Add(-time.Hour)
	signed := signWithExpiry(t, "secret", u, issued, issued.Add(TTL))

	got, err := j.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_RejectedAfterExpiry(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	// Issued 25 hours ago, one hour past the 24h expiry.
	issued := time.Now().Add(-25 * time.Hour)
	signed := signWithExpiry(t, "secret", u, issued, issued.Add(TTL))

	_, err := j.Verify(signed)
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestJWT_WrongKey(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	signed := signWithExpiry(t, "other-secret", u, time.Now(), time.Now().Add(TTL))

	_, err := j.Verify(signed)
	require.ErrorIs(t, err, model.ErrTokenMalformed)
}

func TestJWT_Garbage(t *testing.T) {
	j := NewJWT("secret")

	_, err := j.Verify("not-a-token")
	require.ErrorIs(t, err, model.ErrTokenMalformed)
}

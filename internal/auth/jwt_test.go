package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/backend/internal/models"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated", "https://abc.supabase.co/auth/v1")
	id := models.Identity{UserID: uuid.New(), Email: "ann@example.com"}

	token, err := v.Sign(id, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret, "authenticated", "https://abc.supabase.co/auth/v1")
	id := models.Identity{UserID: uuid.New()}

	expired, err := v.Sign(id, -time.Minute)
	require.NoError(t, err)

	otherAud, err := NewVerifier(testSecret, "service_role", "https://abc.supabase.co/auth/v1").Sign(id, time.Hour)
	require.NoError(t, err)

	otherIss, err := NewVerifier(testSecret, "authenticated", "https://evil.example/auth/v1").Sign(id, time.Hour)
	require.NoError(t, err)

	wrongKey, err := NewVerifier("another-secret", "authenticated", "https://abc.supabase.co/auth/v1").Sign(id, time.Hour)
	require.NoError(t, err)

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Audience:  jwt.ClaimStrings{"authenticated"},
		Issuer:    "https://abc.supabase.co/auth/v1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:  uuid.NewString(),
		Audience: jwt.ClaimStrings{"authenticated"},
		Issuer:   "https://abc.supabase.co/auth/v1",
	}}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":         expired,
		"wrong audience":  otherAud,
		"wrong issuer":    otherIss,
		"wrong key":       wrongKey,
		"subject is uuid": badSub,
		"no expiry":       noExp,
		"garbage":         "abc.def.ghi",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifier_SkipsIssuerWhenUnset(t *testing.T) {
	signer := NewVerifier(testSecret, "authenticated", "https://abc.supabase.co/auth/v1")
	v := NewVerifier(testSecret, "authenticated", "")
	token, err := signer.Sign(models.Identity{UserID: uuid.New()}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.NoError(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	tokens := NewJWT(secret, "inviteplanner")

	token, err := tokens.Issue("user-123", "u@example.com", []string{"admin", "user"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "inviteplanner", claims.Issuer)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"admin", "user"}, claims.Roles)
}

func TestJWT_Verify(t *testing.T) {
	tokens := NewJWT("test-secret", "inviteplanner")
	valid, err := tokens.Issue("user-123", "u@example.com", []string{"user"}, time.Hour)
	require.NoError(t, err)
	expired, err := tokens.Issue("user-123", "u@example.com", []string{"user"}, -time.Minute)
	require.NoError(t, err)
	otherSecret, err := NewJWT("other-secret", "inviteplanner").Issue("user-123", "u@example.com", nil, time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewJWT("test-secret", "someone-else").Issue("user-123", "u@example.com", nil, time.Hour)
	require.NoError(t, err)

	p, err := tokens.Verify(valid)
	require.NoError(t, err)
	assert.Equal(t, "user-123", p.UserID)
	assert.Equal(t, []string{"user"}, p.Roles)

	for name, tok := range map[string]string{
		"expired":      expired,
		"other secret": otherSecret,
		"other issuer": otherIssuer,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken("u1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "u1", claims.Subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("secret-a", 5).GenerateToken("u1", "a@b.c")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 5).ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("secret", 5).ParseToken("not-a-token")
	require.Error(t, err)
}

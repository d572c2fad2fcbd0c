package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlog/blog-api/models"
)

func TestMain(m *testing.M) {
	// Config is loaded lazily and fails hard without a secret.
	os.Setenv("JWT_SECRET", "unit-test-secret")
	os.Exit(m.Run())
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("alice", models.RoleUser, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestTokenCarriesAdminRole(t *testing.T) {
	token, err := GenerateToken("root", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("alice", models.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken("alice", models.RoleUser, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestBlacklistRoundTrip(t *testing.T) {
	token, err := GenerateToken("alice", models.RoleUser, time.Hour)
	require.NoError(t, err)

	assert.False(t, IsTokenBlacklisted(token))
	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
}

func TestBlacklistIgnoresExpired(t *testing.T) {
	BlacklistToken("stale-token", time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted("stale-token"))
}

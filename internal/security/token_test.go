package security_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"koperasi-backend/internal/security"
)

const testSecret = "a-test-secret-that-is-long-enough-123456"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := security.NewTokenManager(testSecret, 60, 0)

	t.Run("AccessToken", func(t *testing.T) {
		tok, err := tm.GenerateAccessToken(7, "budi@example.com", "admin")
		assert.NoError(t, err)

		claims, err := tm.ValidateToken(tok)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), claims.MemberID)
		assert.Equal(t, "budi@example.com", claims.Email)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, security.TokenTypeAccess, claims.Type)
	})

	t.Run("RefreshToken", func(t *testing.T) {
		tok, err := tm.GenerateRefreshToken(7, "budi@example.com")
		assert.NoError(t, err)

		claims, err := tm.ValidateToken(tok)
		assert.NoError(t, err)
		assert.Equal(t, security.TokenTypeRefresh, claims.Type)
		assert.Empty(t, claims.Role)
	})

	t.Run("EachTokenGetsItsOwnJTI", func(t *testing.T) {
		first, err := tm.GenerateAccessToken(7, "budi@example.com", "member")
		assert.NoError(t, err)
		second, err := tm.GenerateAccessToken(7, "budi@example.com", "member")
		assert.NoError(t, err)

		c1, err := tm.ValidateToken(first)
		assert.NoError(t, err)
		c2, err := tm.ValidateToken(second)
		assert.NoError(t, err)

		_, err = uuid.Parse(c1.ID)
		assert.NoError(t, err)
		assert.NotEqual(t, c1.ID, c2.ID)
	})

	t.Run("WrongSecretRejected", func(t *testing.T) {
		other := security.NewTokenManager("another-secret-that-is-also-long-enough", 60, 0)
		tok, err := other.GenerateAccessToken(7, "budi@example.com", "member")
		assert.NoError(t, err)

		_, err = tm.ValidateToken(tok)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		_, err := tm.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

package application

import (
	"testing"
	"time"

	"github.com/atlasquant/tradedesk/internal/auth/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testUser(id uint, role domain.UserRole) *domain.User {
	return &domain.User{
		Model: gorm.Model{ID: id},
		Email: "trader@example.com",
		Role:  role,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	signed, expiresAt, err := tokens.Issue(testUser(42, domain.RoleTrader))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, domain.RoleTrader, claims.Role)
	assert.Equal(t, "trader@example.com", claims.Subject)
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	signed, _, err := NewTokenManager("secret-a", time.Hour).Issue(testUser(1, domain.RoleAdmin))
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(signed)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokenManager("test-secret", -time.Minute)
	signed, _, err := tokens.Issue(testUser(1, domain.RoleTrader))
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestTokenVerifyRejectsGarbage(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	_, err := tokens.Verify("not.a.token")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestTokenVerifyRejectsInvalidRole(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	signed, _, err := tokens.Issue(testUser(1, "SUPERUSER"))
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

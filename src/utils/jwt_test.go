package utils

import (
	"context"
	"testing"
	"time"

	"Backend-Feedback/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testIdentity() models.Identity {
	return models.Identity{
		UserID:       primitive.NewObjectID(),
		Email:        "student@example.com",
		Role:         models.RoleStudent,
		Department:   models.DepartmentCSE,
		AcademicYear: primitive.NewObjectID(),
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	id := testIdentity()

	token, err := m.GenerateAccessToken(id)
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	got, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, time.Minute.Seconds(), claims.ExpiresIn().Seconds(), 5)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	id := testIdentity()

	refresh, err := m.GenerateRefreshToken(id)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err)

	access, err := m.GenerateAccessToken(id)
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestExpiredAndMalformedTokens(t *testing.T) {
	m := NewTokenManager("access", "refresh", -time.Minute, time.Hour)
	token, err := m.GenerateAccessToken(testIdentity())
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.Error(t, err)

	_, err = m.ParseAccessToken("")
	assert.Error(t, err)
	_, err = m.ParseAccessToken("not.a.token")
	assert.Error(t, err)
}

func TestClaimsRejectUnknownRole(t *testing.T) {
	claims := &JWTClaims{UserID: primitive.NewObjectID().Hex(), Role: "superuser"}
	_, err := claims.Identity()
	assert.Error(t, err)

	claims = &JWTClaims{UserID: "x", Role: "admin"}
	_, err = claims.Identity()
	assert.Error(t, err)
}

func TestSessionStoreWithoutRedisIsNoop(t *testing.T) {
	s := NewSessionStore(nil, 5, time.Minute)
	ctx := context.Background()

	assert.False(t, s.Enabled())
	assert.NoError(t, s.BlacklistToken(ctx, "jti", time.Minute))
	listed, err := s.IsTokenBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, listed)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.RecordLoginFailure(ctx, "a@b.c"))
	}
	ok, err := s.LoginAllowed(ctx, "a@b.c")
	require.NoError(t, err)
	assert.True(t, ok)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	u := NewUser("jsmith", "hash")
	u.FullName = "J. Smith"
	u.Roles = []string{RoleManager}

	token, expiresAt, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), uc.UserID)
	assert.Equal(t, "jsmith", uc.Login)
	assert.Equal(t, "J. Smith", uc.FullName)
	assert.Equal(t, []string{RoleManager}, uc.Roles)
	assert.False(t, uc.IsAdmin)
	assert.NotEmpty(t, uc.SessionID)
}

func TestJWTWrongSecret(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret-a"))
	token, _, err := svc.GenerateAccessToken(NewUser("jsmith", "hash"))
	require.NoError(t, err)

	other := NewJWTService(DefaultJWTConfig("secret-b"))
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(NewUser("jsmith", "hash"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestUserHasRole(t *testing.T) {
	u := NewUser("op", "hash")
	u.Roles = []string{RoleOperator}

	assert.True(t, u.HasRole(RoleOperator))
	assert.False(t, u.HasRole(RoleManager))

	u.IsAdmin = true
	assert.True(t, u.HasRole(RoleManager), "admin passes every role check")
}

func TestUserLocking(t *testing.T) {
	u := NewUser("op", "hash")

	u.RecordFailedLogin(3, time.Hour)
	u.RecordFailedLogin(3, time.Hour)
	assert.False(t, u.IsLocked())

	u.RecordFailedLogin(3, time.Hour)
	assert.True(t, u.IsLocked())
	assert.Error(t, u.CanLogin())

	u.RecordSuccessfulLogin()
	assert.False(t, u.IsLocked())
	assert.NoError(t, u.CanLogin())
	assert.NotNil(t, u.LastLoginAt)
}

package auth

import (
	"testing"

	"modpanel_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test_secret_key"
	cfg.JWT.TTLHours = 1
	cfg.Security.IPSalt = "test_salt"
	config.AppConfig = cfg
}

func TestGenerateAndParseToken(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken("user-id-123", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-id-123", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestParseToken_WrongSecret(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateToken("user-id-123", false)
	require.NoError(t, err)

	config.AppConfig.JWT.Secret = "another_secret"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	setTestConfig(t)

	_, err := ParseToken("not.a.token")
	assert.Error(t, err)

	_, err = ParseToken("")
	assert.Error(t, err)
}

package auth

import (
	"strings"
	"testing"

	"modpanel_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestHashIP_Deterministic(t *testing.T) {
	setTestConfig(t)

	h1 := HashIP("203.0.113.7")
	h2 := HashIP("203.0.113.7")
	assert.Equal(t, h1, h2)

	// sha256 в hex
	assert.Len(t, h1, 64)
}

func TestHashIP_DifferentIPs(t *testing.T) {
	setTestConfig(t)

	assert.NotEqual(t, HashIP("203.0.113.7"), HashIP("203.0.113.8"))
}

func TestHashIP_SaltDependent(t *testing.T) {
	setTestConfig(t)

	h1 := HashIP("203.0.113.7")
	config.AppConfig.Security.IPSalt = "other_salt"
	h2 := HashIP("203.0.113.7")
	assert.NotEqual(t, h1, h2)
}

func TestHashIP_NoRawIPInHash(t *testing.T) {
	setTestConfig(t)

	h := HashIP("203.0.113.7")
	assert.False(t, strings.Contains(h, "203.0.113.7"))
}

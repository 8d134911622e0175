package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Price    float64 `json:"price" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"required,oneof=hours days"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Username: "alice", Price: 10, Unit: "days"})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Username: "al", Price: -1, Unit: "weeks"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)

	// Ключи - json-теги, а не имена Go-полей
	assert.Contains(t, vErr.Errors, "username")
	assert.Contains(t, vErr.Errors, "price")
	assert.Contains(t, vErr.Errors, "unit")
	assert.NotContains(t, vErr.Errors, "Username")
}

func TestValidateVar_UUID(t *testing.T) {
	v := New()
	assert.NoError(t, v.ValidateVar("0d4b39a4-18a6-4d3f-b8a8-123456789abc", "uuid"))
	assert.Error(t, v.ValidateVar("not-a-uuid", "uuid"))
	assert.Error(t, v.ValidateVar("", "uuid"))
}

package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=fan creator moderator admin"`
}

func TestRequestValidator(t *testing.T) {
	rv := NewRequestValidator()

	assert.NoError(t, rv.Validate(sampleRequest{Email: "a@b.co", Role: "creator"}))
	assert.Error(t, rv.Validate(sampleRequest{Email: "nope", Role: "creator"}))
	assert.Error(t, rv.Validate(sampleRequest{Email: "a@b.co", Role: "superuser"}))
}

func TestValidationFields(t *testing.T) {
	rv := NewRequestValidator()

	err := rv.Validate(sampleRequest{Email: "nope", Role: ""})
	require.Error(t, err)

	fields := ValidationFields(err)
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "required", fields["role"])
}

func TestValidationFieldsUnknownError(t *testing.T) {
	fields := ValidationFields(errors.New("boom"))
	assert.Equal(t, map[string]string{"_": "invalid"}, fields)
}

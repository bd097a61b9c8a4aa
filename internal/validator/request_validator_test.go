package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Condition string `json:"condition" validate:"omitempty,oneof=new good"`
	Quantity  int64  `json:"quantity" validate:"gte=1"`
}

func TestRequestValidator_OK(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Email: "a@example.com", Password: "password123", Quantity: 1})
	assert.NoError(t, err)
}

func TestRequestValidator_UsesJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Email: "nope", Password: "short", Condition: "mint", Quantity: 0})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "email must be a valid email", ve.Fields["email"])
	assert.Equal(t, "password must be at least 8 characters", ve.Fields["password"])
	assert.Equal(t, "condition must be one of: new good", ve.Fields["condition"])
	assert.Equal(t, "quantity must be >= 1", ve.Fields["quantity"])

	//フィールド名順で先頭のもの
	assert.Equal(t, "condition must be one of: new good", err.Error())
}

func TestRequestValidator_Required(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, "email required", err.Error())
}

package config

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedConfig struct {
	URL   string `validate:"required,url"`
	Cap   int    `validate:"min=1,max=999"`
	Codec string `validate:"oneof=json msgpack"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(&validatedConfig{URL: "ws://localhost:7420/rpc", Cap: 99, Codec: "json"}))
	})

	t.Run("invalid", func(t *testing.T) {
		err := v.Validate(&validatedConfig{Cap: 1000, Codec: "xml"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidationFailed))
		assert.Contains(t, err.Error(), "validatedConfig.URL' is required")
		assert.Contains(t, err.Error(), "must be at most 999")
		assert.Contains(t, err.Error(), "must be one of [json msgpack]")
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)
	})
}

func TestValidatorCustomRule(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}))

	type cfg struct {
		N int `validate:"even"`
	}
	assert.NoError(t, v.Validate(&cfg{N: 4}))
	assert.Error(t, v.Validate(&cfg{N: 3}))
}

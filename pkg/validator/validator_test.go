package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/ngirim/pkg/validator"
)

func TestValidate(t *testing.T) {
	type S struct {
		Name string `validate:"required"`
	}

	t.Run("nil input", func(t *testing.T) {
		err := validator.Validate(nil)
		assert.Error(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := validator.Validate(S{})
		assert.Error(t, err)
	})

	t.Run("ok", func(t *testing.T) {
		err := validator.Validate(S{Name: "ngirim"})
		assert.NoError(t, err)
	})
}

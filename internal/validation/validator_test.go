package validation

import (
	"testing"

	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Tip      int    `json:"tip" validate:"gte=0"`
}

func TestValidatePasses(t *testing.T) {
	v := New()
	err := v.Validate(registerInput{Email: "reader@example.com", Password: "long enough", Tip: 0})
	assert.NoError(t, err)
}

func TestValidateReportsFieldsByJSONName(t *testing.T) {
	v := New()
	err := v.Validate(registerInput{Email: "not-an-email", Password: "short", Tip: -1})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	fields, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "tip")
	assert.Equal(t, "must be a valid email address", fields["email"])
}

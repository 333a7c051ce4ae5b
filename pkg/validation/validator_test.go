package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskpulse/pkg/util"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"omitempty,oneof=admin manager employee"`
}

func TestValidatePasses(t *testing.T) {
	v := New()
	err := v.Validate(samplePayload{Email: "a@example.com", Name: "A", Role: "admin"})
	assert.NoError(t, err)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(samplePayload{Email: "not-an-email", Role: "root"})
	require.Error(t, err)

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "email")
	assert.Contains(t, domainErr.Details, "name")
	assert.Contains(t, domainErr.Details, "role")
}

// Package validation wraps go-playground/validator for request payloads.
// Struct tag violations are translated into the domain error taxonomy so
// handlers can return them directly.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/taskpulse/pkg/util"
)

// RequestValidator validates inbound DTOs against their struct tags.
type RequestValidator struct {
	validate *validator.Validate
}

// New builds a validator configured for JSON field names.
func New() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate checks the struct and maps failures to a Validation error whose
// details name every offending field.
func (rv *RequestValidator) Validate(payload any) error {
	err := rv.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return util.NewInternalError(err)
	}

	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return util.NewValidationError("invalid request payload", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

package validation

import (
	"errors"
	"fmt"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/go-playground/validator/v10"
)

// FieldError represents a validation error with field-level details
type FieldError struct {
	Field   string
	Message string
}

// Global validator instance (reused across all forms)
var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a form struct using go-playground/validator. The
// returned error wraps models.ErrValidation and names the first failing
// field.
func Struct(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := Fields(ve)
		if len(fields) > 0 {
			return fmt.Errorf("%w: %s %s", models.ErrValidation, fields[0].Field, fields[0].Message)
		}
	}
	return fmt.Errorf("%w: %v", models.ErrValidation, err)
}

// Var validates a single value against tag.
func Var(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("%w: %s %s", models.ErrValidation, field, formatValidationError(ve[0]))
	}
	return fmt.Errorf("%w: %s: %v", models.ErrValidation, field, err)
}

// Fields converts validator errors into field/message pairs.
func Fields(ve validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return out
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

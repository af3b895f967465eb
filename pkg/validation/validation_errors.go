package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps JSON field names to user-friendly labels
var FieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"subject": "Subject",
	"message": "Message",
}

// FieldError is a formatted validation failure for one field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		return []FieldError{{Field: "general", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: formatSingleError(e),
		})
	}
	return out
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "Please provide a valid email address."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, param)
	case "no_newline":
		return fmt.Sprintf("%s must not contain line breaks.", label)
	default:
		return fmt.Sprintf("%s is invalid (%s).", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}

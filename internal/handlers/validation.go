package handlers

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"expense_tracker/internal/service"

	"github.com/go-playground/validator/v10"
)

// fieldErrors maps binding and service validation failures to form field names.
// ok is false when err is not a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[snakeCase(fe.Field())] = validationMessage(fe)
		}
		return out, true
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return map[string]string{ve.Field: ve.Message}, true
	}
	return nil, false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Invalid value."
	}
}

// snakeCase turns a Go field name such as HonestReason into honest_reason.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	apperrors "github.com/allisson/secrethold/internal/errors"
)

// PinMaxLength is the longest PIN, in runes, accepted from a client.
const PinMaxLength = 1024

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoControlChars validates that a string has no control characters.
var NoControlChars = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.IndexFunc(s, unicode.IsControl) < 0
	},
	validation.NewError("validation_no_control_chars", "must not contain control characters"),
)

// Pin is the rule set applied to every PIN accepted from a client.
var Pin = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, PinMaxLength),
	NoControlChars,
}

// Encoded validates that a string decodes under enc. Empty strings pass so Required
// decides on them.
func Encoded(enc cryptoDomain.Encoding) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			if p, isPtr := value.(*string); isPtr && p != nil {
				s = *p
			} else {
				return nil
			}
		}
		if s == "" {
			return nil
		}
		if _, err := enc.DecodeString(s); err != nil {
			return validation.NewError("validation_encoding", "must be valid "+string(enc)+" data")
		}
		return nil
	})
}

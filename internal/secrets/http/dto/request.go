// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	customValidation "github.com/allisson/secrethold/internal/validation"
)

// SetSecretRequest contains the parameters for storing a secret.
// The id is extracted from the URL parameter, not the request body.
// Secret is a pointer so an explicit empty secret can be told apart from a missing field.
type SetSecretRequest struct {
	Secret *string `json:"secret"`
	Pin    string  `json:"pin"`
}

// Validate checks the request against the configured secret encoding.
func (r *SetSecretRequest) Validate(encoding cryptoDomain.Encoding) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secret, validation.NotNil, customValidation.Encoded(encoding)),
		validation.Field(&r.Pin, customValidation.Pin...),
	)
}

// RevealSecretRequest contains the PIN used to open a secret.
type RevealSecretRequest struct {
	Pin string `json:"pin"`
}

// Validate checks if the reveal request is valid.
func (r *RevealSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Pin, customValidation.Pin...),
	)
}

// ChangePinRequest contains the current and the new PIN of a secret.
type ChangePinRequest struct {
	OldPin string `json:"old_pin"`
	NewPin string `json:"new_pin"`
}

// Validate checks if the change pin request is valid.
func (r *ChangePinRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldPin, customValidation.Pin...),
		validation.Field(&r.NewPin, customValidation.Pin...),
	)
}

package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

func strPtr(s string) *string { return &s }

func TestSetSecretRequest_Validate(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := SetSecretRequest{Secret: strPtr("secret message"), Pin: "123456abcdef"}
		assert.NoError(t, req.Validate(cryptoDomain.EncodingUTF8))
	})

	t.Run("Success_EmptySecret", func(t *testing.T) {
		req := SetSecretRequest{Secret: strPtr(""), Pin: "123456abcdef"}
		assert.NoError(t, req.Validate(cryptoDomain.EncodingUTF8))
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		req := SetSecretRequest{Pin: "123456abcdef"}
		err := req.Validate(cryptoDomain.EncodingUTF8)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "secret")
	})

	t.Run("Error_EmptyPin", func(t *testing.T) {
		req := SetSecretRequest{Secret: strPtr("secret message")}
		err := req.Validate(cryptoDomain.EncodingUTF8)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "pin")
	})

	t.Run("Error_SecretNotInEncoding", func(t *testing.T) {
		req := SetSecretRequest{Secret: strPtr("not hex"), Pin: "123456abcdef"}
		err := req.Validate(cryptoDomain.EncodingHex)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "secret")
	})
}

func TestRevealSecretRequest_Validate(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := RevealSecretRequest{Pin: "123456abcdef"}
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_TooLongPin", func(t *testing.T) {
		req := RevealSecretRequest{Pin: strings.Repeat("x", 2000)}
		assert.Error(t, req.Validate())
	})
}

func TestChangePinRequest_Validate(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := ChangePinRequest{OldPin: "123456abcdef", NewPin: "new_pin"}
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_MissingNewPin", func(t *testing.T) {
		req := ChangePinRequest{OldPin: "123456abcdef"}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "new_pin")
	})
}

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	apperrors "github.com/allisson/secrethold/internal/errors"
)

func fixtureEnvelope() *cryptoDomain.Envelope {
	return &cryptoDomain.Envelope{
		EnvelopeHeader: cryptoDomain.EnvelopeHeader{
			PinSalt:   []byte{0xfb, 0xff, 0x00},
			IV:        []byte{0x01, 0x02},
			MasterTag: []byte{0xaa},
			PinTag:    []byte{0xbb, 0xcc},
		},
		Ciphertext: []byte("hi"),
	}
}

func TestNewEnvelopeCodec(t *testing.T) {
	t.Run("Success_DefaultEncoding", func(t *testing.T) {
		codec, err := NewEnvelopeCodec("")
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.EncodingBase64URL, codec.encoding)
	})

	t.Run("Error_UTF8", func(t *testing.T) {
		_, err := NewEnvelopeCodec(cryptoDomain.EncodingUTF8)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedEncoding)
	})
}

func TestEnvelopeCodec_Serialize(t *testing.T) {
	tests := []struct {
		encoding cryptoDomain.Encoding
		want     string
	}{
		{cryptoDomain.EncodingBase64URL, "-_8A:AQI:qg:u8w:aGk"},
		{cryptoDomain.EncodingBase64, "+/8A:AQI=:qg==:u8w=:aGk="},
		{cryptoDomain.EncodingHex, "fbff00:0102:aa:bbcc:6869"},
	}

	for _, tt := range tests {
		t.Run(string(tt.encoding), func(t *testing.T) {
			codec, err := NewEnvelopeCodec(tt.encoding)
			require.NoError(t, err)

			got, err := codec.Serialize(fixtureEnvelope())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			parsed, err := codec.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, fixtureEnvelope(), parsed)
		})
	}

	t.Run("Error_Incomplete", func(t *testing.T) {
		codec, err := NewEnvelopeCodec("")
		require.NoError(t, err)

		envelope := fixtureEnvelope()
		envelope.PinTag = nil
		_, err = codec.Serialize(envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})
}

func TestEnvelopeCodec_RoundTripSealed(t *testing.T) {
	codec, err := NewEnvelopeCodec("")
	require.NoError(t, err)
	c := newTestCipherLayer(t)
	mk := newTestMasterKey(t, 0)

	for _, plaintext := range []string{"", "secret message", strings.Repeat("z", 1000)} {
		envelope, err := c.Seal(t.Context(), []byte(plaintext), mk, "123456abcdef")
		require.NoError(t, err)

		encoded, err := codec.Serialize(envelope)
		require.NoError(t, err)
		assert.Equal(t, 5, len(strings.Split(encoded, ":")))
		assert.NotContains(t, encoded, "=")

		parsed, err := codec.Parse(encoded)
		require.NoError(t, err)
		assert.Equal(t, envelope.EnvelopeHeader, parsed.EnvelopeHeader)
		assert.Equal(t, len(envelope.Ciphertext), len(parsed.Ciphertext))

		got, err := c.Open(t.Context(), parsed, mk, "123456abcdef")
		require.NoError(t, err)
		assert.Equal(t, plaintext, string(got))
	}
}

func TestEnvelopeCodec_Parse(t *testing.T) {
	codec, err := NewEnvelopeCodec("")
	require.NoError(t, err)

	t.Run("Success_EmptyCiphertext", func(t *testing.T) {
		envelope, err := codec.Parse("AQ:Ag:Aw:BA:")
		require.NoError(t, err)
		assert.Empty(t, envelope.Ciphertext)
		assert.Equal(t, []byte{1}, envelope.PinSalt)
	})

	t.Run("Success_PaddedInput", func(t *testing.T) {
		envelope, err := codec.Parse("AQ==:Ag==:Aw==:BA==:aGk=")
		require.NoError(t, err)
		assert.Equal(t, []byte("hi"), envelope.Ciphertext)
	})

	for name, input := range map[string]string{
		"LegacyThreeFields": "AQ:Ag:aGk",
		"FourFields":        "AQ:Ag:Aw:BA",
		"SixFields":         "AQ:Ag:Aw:BA:aGk:aGk",
		"Empty":             "",
		"BadCharacter":      "AQ:Ag:A!:BA:aGk",
		"EmptySalt":         ":Ag:Aw:BA:aGk",
		"EmptyMasterTag":    "AQ:Ag::BA:aGk",
	} {
		t.Run("Error_"+name, func(t *testing.T) {
			_, err := codec.Parse(input)
			assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
			assert.ErrorIs(t, err, apperrors.ErrIntegrity)
		})
	}
}

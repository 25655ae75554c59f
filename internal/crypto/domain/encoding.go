package domain

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Encoding is a text encoding for binary values.
//
// Envelope fields accept only the binary-safe encodings (base64url, base64, hex) because
// their alphabets never contain the envelope delimiter. Plaintext secrets may additionally
// use utf8, in which case the secret string is taken byte for byte.
type Encoding string

const (
	EncodingBase64URL Encoding = "base64url"
	EncodingBase64    Encoding = "base64"
	EncodingHex       Encoding = "hex"
	EncodingUTF8      Encoding = "utf8"
)

// ParseEncoding validates an encoding name coming from configuration.
func ParseEncoding(s string) (Encoding, error) {
	e := Encoding(strings.ToLower(strings.TrimSpace(s)))
	switch e {
	case EncodingBase64URL, EncodingBase64, EncodingHex, EncodingUTF8:
		return e, nil
	case "utf-8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, s)
	}
}

// BinarySafe reports whether the encoding can represent arbitrary bytes without
// producing the envelope delimiter.
func (e Encoding) BinarySafe() bool {
	switch e {
	case EncodingBase64URL, EncodingBase64, EncodingHex:
		return true
	default:
		return false
	}
}

// EncodeToString encodes b. base64url output carries no padding, base64 output does.
func (e Encoding) EncodeToString(b []byte) string {
	switch e {
	case EncodingBase64URL:
		return base64.RawURLEncoding.EncodeToString(b)
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(b)
	case EncodingHex:
		return hex.EncodeToString(b)
	default:
		return string(b)
	}
}

// DecodeString decodes s. Both base64 flavours tolerate missing or trailing padding.
func (e Encoding) DecodeString(s string) ([]byte, error) {
	switch e {
	case EncodingBase64URL:
		return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	case EncodingBase64:
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	case EncodingHex:
		return hex.DecodeString(s)
	case EncodingUTF8:
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, string(e))
	}
}

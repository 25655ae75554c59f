package domain

// Envelope layout and key derivation defaults.
//
// The cipher is AES-256-GCM with a 16-byte IV and 16-byte tags on both layers, which keeps
// envelopes byte compatible with data written by earlier releases of secrethold.
const (
	// KeySize is the required size of the master key and of every PIN-derived key.
	KeySize = 32

	// IVSize is the size of the IV shared by the PIN and master layers of one envelope.
	IVSize = 16

	// TagSize is the size of each layer's authentication tag.
	TagSize = 16

	// DefaultSaltSize is the size of the random PIN salt drawn for every envelope.
	DefaultSaltSize = 16

	// MinSaltSize is the smallest PIN salt accepted by the configuration.
	MinSaltSize = 12

	// DefaultIterations is the PBKDF2 iteration count used when none is configured.
	DefaultIterations = 100_000

	// DefaultDigest is the PBKDF2 digest used when none is configured.
	DefaultDigest = SHA256

	// DefaultEnvelopeEncoding is the text encoding of envelope fields.
	DefaultEnvelopeEncoding = EncodingBase64URL

	// DefaultSecretEncoding is the text encoding of plaintext secrets handed to secrethold.
	DefaultSecretEncoding = EncodingUTF8

	// EnvelopeDelimiter separates envelope fields in their serialized form.
	EnvelopeDelimiter = ":"
)

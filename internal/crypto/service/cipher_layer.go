package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

// CipherLayer composes a PIN layer and a master layer of AES-256-GCM over one stream.
//
// Both layers share the envelope IV. Encryption runs the PIN layer first and the master
// layer second, so the ciphertext can only be recovered with both keys. Decryption is two
// passes over a seekable source: the first pass authenticates both layers and discards its
// output, the second pass writes plaintext. A wrong PIN or a tampered envelope therefore
// never releases plaintext bytes.
type CipherLayer struct {
	kdf       KeyDeriver
	saltSize  int
	chunkSize int
	random    io.Reader
}

// NewCipherLayer returns a cipher layer drawing saltSize-byte PIN salts.
// A zero saltSize selects the default.
func NewCipherLayer(kdf KeyDeriver, saltSize int) (*CipherLayer, error) {
	if saltSize == 0 {
		saltSize = cryptoDomain.DefaultSaltSize
	}
	if saltSize < cryptoDomain.MinSaltSize {
		return nil, fmt.Errorf(
			"%w: salt must be at least %d bytes, got %d",
			cryptoDomain.ErrCipherConfig,
			cryptoDomain.MinSaltSize,
			saltSize,
		)
	}
	return &CipherLayer{
		kdf:       kdf,
		saltSize:  saltSize,
		chunkSize: DefaultChunkSize,
		random:    rand.Reader,
	}, nil
}

// EncryptEnvelope implements EnvelopeCipher. A fresh salt and IV are drawn on every call.
// When ctx is cancelled mid-stream no header is returned, so the partial ciphertext already
// written to dst cannot form an envelope.
func (c *CipherLayer) EncryptEnvelope(
	ctx context.Context,
	dst io.Writer,
	src io.Reader,
	masterKey *cryptoDomain.MasterKey,
	pin string,
) (*cryptoDomain.EnvelopeHeader, error) {
	salt := make([]byte, c.saltSize)
	if _, err := io.ReadFull(c.random, salt); err != nil {
		return nil, fmt.Errorf("failed to generate pin salt: %w", err)
	}
	iv := make([]byte, cryptoDomain.IVSize)
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	pinKey, err := c.kdf.DeriveKey(ctx, pin, salt)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(pinKey)

	pinStage, err := newEncryptStage(pinKey, iv)
	if err != nil {
		return nil, err
	}
	var masterStage *gcmStage
	err = masterKey.Use(func(key []byte) error {
		var err error
		masterStage, err = newEncryptStage(key, iv)
		return err
	})
	if err != nil {
		return nil, err
	}

	pipeline := c.newPipeline(pinStage, masterStage)
	if _, err := pipeline.Stream(ctx, dst, src); err != nil {
		_, _ = pipeline.Finalize()
		return nil, err
	}

	tags, err := pipeline.Finalize()
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.EnvelopeHeader{
		PinSalt:   salt,
		IV:        iv,
		MasterTag: tags[1],
		PinTag:    tags[0],
	}, nil
}

// DecryptEnvelope implements EnvelopeCipher. src is read twice: the first pass only checks
// both tags, the second writes plaintext to dst while checking them again. src must yield
// the same bytes on both reads. If it changes between passes, dst may receive unverified
// plaintext before the second check fails with ErrAuthenticationFailed, and the caller must
// discard dst. Open reads from memory it owns and is not exposed to this.
func (c *CipherLayer) DecryptEnvelope(
	ctx context.Context,
	dst io.Writer,
	src io.ReadSeeker,
	masterKey *cryptoDomain.MasterKey,
	pin string,
	header *cryptoDomain.EnvelopeHeader,
) error {
	if err := validateHeader(header); err != nil {
		return err
	}

	pinKey, err := c.kdf.DeriveKey(ctx, pin, header.PinSalt)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(pinKey)

	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to locate ciphertext start: %w", err)
	}

	for pass := 0; pass < 2; pass++ {
		out := io.Discard
		if pass == 1 {
			if _, err := src.Seek(start, io.SeekStart); err != nil {
				return fmt.Errorf("failed to rewind ciphertext: %w", err)
			}
			out = dst
		}

		pipeline, err := c.decryptPipeline(masterKey, pinKey, header)
		if err != nil {
			return err
		}
		if _, err := pipeline.Stream(ctx, out, src); err != nil {
			_, _ = pipeline.Finalize()
			return err
		}
		if _, err := pipeline.Finalize(); err != nil {
			return err
		}
	}

	return nil
}

// Seal implements EnvelopeCipher.
func (c *CipherLayer) Seal(
	ctx context.Context,
	plaintext []byte,
	masterKey *cryptoDomain.MasterKey,
	pin string,
) (*cryptoDomain.Envelope, error) {
	var ciphertext bytes.Buffer
	ciphertext.Grow(len(plaintext))

	header, err := c.EncryptEnvelope(ctx, &ciphertext, bytes.NewReader(plaintext), masterKey, pin)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.Envelope{EnvelopeHeader: *header, Ciphertext: ciphertext.Bytes()}, nil
}

// Open implements EnvelopeCipher.
func (c *CipherLayer) Open(
	ctx context.Context,
	envelope *cryptoDomain.Envelope,
	masterKey *cryptoDomain.MasterKey,
	pin string,
) ([]byte, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	// Sized up front so the buffer never reallocates and leaves plaintext copies behind.
	plaintext := bytes.NewBuffer(make([]byte, 0, len(envelope.Ciphertext)))
	err := c.DecryptEnvelope(
		ctx,
		plaintext,
		bytes.NewReader(envelope.Ciphertext),
		masterKey,
		pin,
		&envelope.EnvelopeHeader,
	)
	if err != nil {
		return nil, err
	}
	return plaintext.Bytes(), nil
}

func (c *CipherLayer) decryptPipeline(
	masterKey *cryptoDomain.MasterKey,
	pinKey []byte,
	header *cryptoDomain.EnvelopeHeader,
) (*Pipeline, error) {
	var masterStage *gcmStage
	err := masterKey.Use(func(key []byte) error {
		var err error
		masterStage, err = newDecryptStage(key, header.IV, header.MasterTag)
		return err
	})
	if err != nil {
		return nil, err
	}

	pinStage, err := newDecryptStage(pinKey, header.IV, header.PinTag)
	if err != nil {
		return nil, err
	}

	return c.newPipeline(masterStage, pinStage), nil
}

func (c *CipherLayer) newPipeline(stages ...Stage) *Pipeline {
	p := NewPipeline(stages...)
	p.chunkSize = c.chunkSize
	return p
}

func validateHeader(header *cryptoDomain.EnvelopeHeader) error {
	if header == nil {
		return fmt.Errorf("%w: missing envelope header", cryptoDomain.ErrCipherConfig)
	}
	if len(header.IV) != cryptoDomain.IVSize {
		return fmt.Errorf("%w: iv must be %d bytes, got %d", cryptoDomain.ErrCipherConfig, cryptoDomain.IVSize, len(header.IV))
	}
	if len(header.PinSalt) == 0 {
		return fmt.Errorf("%w: empty pin salt", cryptoDomain.ErrCipherConfig)
	}
	return nil
}

package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
)

// maxGCMPlaintext is the most data one (key, IV) pair may cover: 2^32-2 counter blocks.
const maxGCMPlaintext = (1<<32 - 2) * 16

// gcmStage is AES-GCM without additional data, driven incrementally.
//
// crypto/cipher only offers one-shot Seal and Open, which need the whole message in memory.
// This stage runs the same construction (CTR keystream with a 32-bit counter and a running
// GHASH over the ciphertext) so chunks can be processed as they arrive. Any IV length is
// accepted; IVs other than 12 bytes are hashed into the pre-counter block.
type gcmStage struct {
	block     cipher.Block
	decrypt   bool
	expected  []byte
	counter   [16]byte
	keystream [16]byte
	used      int
	tagMask   [16]byte
	hash      *ghash
	length    uint64
	finalized bool
}

// newEncryptStage returns a stage that encrypts and reports the tag on Finalize.
func newEncryptStage(key, iv []byte) (*gcmStage, error) {
	return newGCMStage(key, iv, nil, false)
}

// newDecryptStage returns a stage that decrypts and checks tag on Finalize.
func newDecryptStage(key, iv, tag []byte) (*gcmStage, error) {
	if len(tag) != cryptoDomain.TagSize {
		return nil, fmt.Errorf("%w: tag must be %d bytes, got %d", cryptoDomain.ErrCipherConfig, cryptoDomain.TagSize, len(tag))
	}
	return newGCMStage(key, iv, tag, true)
}

func newGCMStage(key, iv, tag []byte, decrypt bool) (*gcmStage, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", cryptoDomain.ErrCipherConfig, cryptoDomain.KeySize, len(key))
	}
	if len(iv) == 0 {
		return nil, fmt.Errorf("%w: empty iv", cryptoDomain.ErrCipherConfig)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrCipherConfig, err)
	}

	var h [16]byte
	block.Encrypt(h[:], h[:])

	s := &gcmStage{
		block:   block,
		decrypt: decrypt,
		used:    16,
		hash:    newGHash(h[:]),
	}
	if decrypt {
		s.expected = append([]byte(nil), tag...)
	}

	var j0 [16]byte
	if len(iv) == 12 {
		copy(j0[:], iv)
		j0[15] = 1
	} else {
		g := newGHash(h[:])
		g.update(iv)
		j0 = g.sum(0, uint64(len(iv))*8)
	}

	block.Encrypt(s.tagMask[:], j0[:])
	s.counter = j0
	inc32(&s.counter)

	return s, nil
}

// Process implements Stage.
func (s *gcmStage) Process(dst, src []byte) error {
	if s.finalized {
		return cryptoDomain.ErrStageFinalized
	}
	if len(dst) < len(src) {
		return fmt.Errorf("%w: output buffer too small", cryptoDomain.ErrCipherConfig)
	}

	if uint64(len(src)) > maxGCMPlaintext-s.length {
		return fmt.Errorf("%w: input exceeds %d bytes per key and iv", cryptoDomain.ErrCipherConfig, uint64(maxGCMPlaintext))
	}

	if s.decrypt {
		s.hash.update(src)
	}
	for i := range src {
		if s.used == 16 {
			s.block.Encrypt(s.keystream[:], s.counter[:])
			inc32(&s.counter)
			s.used = 0
		}
		dst[i] = src[i] ^ s.keystream[s.used]
		s.used++
	}
	if !s.decrypt {
		s.hash.update(dst[:len(src)])
	}

	s.length += uint64(len(src))
	return nil
}

// Finalize implements Stage.
func (s *gcmStage) Finalize() ([]byte, error) {
	if s.finalized {
		return nil, cryptoDomain.ErrStageFinalized
	}
	s.finalized = true
	defer s.wipe()

	sum := s.hash.sum(0, s.length*8)
	tag := make([]byte, cryptoDomain.TagSize)
	subtle.XORBytes(tag, sum[:], s.tagMask[:])

	if s.decrypt && subtle.ConstantTimeCompare(tag, s.expected) != 1 {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return tag, nil
}

func (s *gcmStage) wipe() {
	s.hash.reset()
	cryptoDomain.ZeroAll(s.keystream[:], s.tagMask[:], s.counter[:])
	s.block = nil
}

// inc32 increments the low 32 bits of the counter block, wrapping within them.
func inc32(counter *[16]byte) {
	c := binary.BigEndian.Uint32(counter[12:])
	binary.BigEndian.PutUint32(counter[12:], c+1)
}

package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	cryptoService "github.com/allisson/secrethold/internal/crypto/service"
)

type cryptoComponents struct {
	kmsService    cryptoService.KMSService
	masterKey     *cryptoDomain.MasterKey
	keyDeriver    *cryptoService.PBKDF2KeyDeriver
	cipherLayer   *cryptoService.CipherLayer
	envelopeCodec *cryptoService.EnvelopeCodec

	kmsServiceInit    sync.Once
	masterKeyInit     sync.Once
	keyDeriverInit    sync.Once
	cipherLayerInit   sync.Once
	envelopeCodecInit sync.Once
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// MasterKey returns the master key loaded from MASTER_KEY, unwrapped through KMS_KEY_URI
// when it is set.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	var err error
	c.masterKeyInit.Do(func() {
		c.masterKey, err = c.initMasterKey()
		if err != nil {
			c.setInitError("masterKey", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("masterKey"); storedErr != nil {
		return nil, storedErr
	}
	return c.masterKey, nil
}

// KeyDeriver returns the PBKDF2 PIN key deriver.
func (c *Container) KeyDeriver() (*cryptoService.PBKDF2KeyDeriver, error) {
	var err error
	c.keyDeriverInit.Do(func() {
		c.keyDeriver, err = c.initKeyDeriver()
		if err != nil {
			c.setInitError("keyDeriver", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyDeriver"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyDeriver, nil
}

// CipherLayer returns the two layer envelope cipher.
func (c *Container) CipherLayer() (*cryptoService.CipherLayer, error) {
	var err error
	c.cipherLayerInit.Do(func() {
		c.cipherLayer, err = c.initCipherLayer()
		if err != nil {
			c.setInitError("cipherLayer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("cipherLayer"); storedErr != nil {
		return nil, storedErr
	}
	return c.cipherLayer, nil
}

// EnvelopeCodec returns the envelope serializer for ENVELOPE_ENCODING.
func (c *Container) EnvelopeCodec() (*cryptoService.EnvelopeCodec, error) {
	var err error
	c.envelopeCodecInit.Do(func() {
		c.envelopeCodec, err = c.initEnvelopeCodec()
		if err != nil {
			c.setInitError("envelopeCodec", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("envelopeCodec"); storedErr != nil {
		return nil, storedErr
	}
	return c.envelopeCodec, nil
}

func (c *Container) initMasterKey() (*cryptoDomain.MasterKey, error) {
	ctx := context.Background()

	var keeper cryptoDomain.KMSKeeper
	if c.config.KMSKeyURI != "" {
		k, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = k.Close()
		}()
		keeper = k
	}

	masterKey, err := cryptoDomain.LoadMasterKey(ctx, c.config.MasterKey, keeper)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}

	c.Logger().Info("master key loaded", "kms_provider", c.config.KMSProvider)
	return masterKey, nil
}

func (c *Container) initKeyDeriver() (*cryptoService.PBKDF2KeyDeriver, error) {
	digest, err := cryptoDomain.ParseDigest(c.config.KDFDigest)
	if err != nil {
		return nil, err
	}

	kdf, err := cryptoService.NewPBKDF2KeyDeriver(cryptoService.KDFConfig{
		Iterations:     c.config.KDFIterations,
		KeyLength:      c.config.KDFKeyLength,
		Digest:         digest,
		MaxConcurrency: c.config.KDFMaxConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create key deriver: %w", err)
	}
	return kdf, nil
}

func (c *Container) initCipherLayer() (*cryptoService.CipherLayer, error) {
	kdf, err := c.KeyDeriver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key deriver for cipher layer: %w", err)
	}

	cipherLayer, err := cryptoService.NewCipherLayer(kdf, c.config.KDFSaltLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher layer: %w", err)
	}
	return cipherLayer, nil
}

func (c *Container) initEnvelopeCodec() (*cryptoService.EnvelopeCodec, error) {
	encoding, err := cryptoDomain.ParseEncoding(c.config.EnvelopeEncoding)
	if err != nil {
		return nil, err
	}

	codec, err := cryptoService.NewEnvelopeCodec(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope codec: %w", err)
	}
	return codec, nil
}

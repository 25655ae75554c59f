package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/allisson/secrethold/internal/cache"
	"github.com/allisson/secrethold/internal/config"
	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	"github.com/allisson/secrethold/internal/http"
	"github.com/allisson/secrethold/internal/metrics"
	secretsHTTP "github.com/allisson/secrethold/internal/secrets/http"
	secretsRepository "github.com/allisson/secrethold/internal/secrets/repository"
	secretsUseCase "github.com/allisson/secrethold/internal/secrets/usecase"
)

type secretsComponents struct {
	memoryCache   *cache.MemoryCache
	secretCache   secretsUseCase.Cache
	boltStorage   *secretsRepository.BoltStorage
	secretUseCase secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string]
	secretHandler *secretsHTTP.SecretHandler
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	secretCacheInit   sync.Once
	boltStorageInit   sync.Once
	secretUseCaseInit sync.Once
	secretHandlerInit sync.Once
	httpServerInit    sync.Once
	metricsServerInit sync.Once
}

// SecretCache returns the plaintext cache shared by every secret operation.
func (c *Container) SecretCache() (secretsUseCase.Cache, error) {
	var err error
	c.secretCacheInit.Do(func() {
		c.secretCache, err = c.initSecretCache()
		if err != nil {
			c.setInitError("secretCache", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretCache"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretCache, nil
}

// BoltStorage returns the bbolt envelope storage.
func (c *Container) BoltStorage() (*secretsRepository.BoltStorage, error) {
	var err error
	c.boltStorageInit.Do(func() {
		c.boltStorage, err = secretsRepository.OpenBoltStorage(c.config.BoltPath)
		if err != nil {
			c.setInitError("boltStorage", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("boltStorage"); storedErr != nil {
		return nil, storedErr
	}
	return c.boltStorage, nil
}

// SecretUseCase returns the secret use case over the storage selected by STORAGE_DRIVER.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string], error) {
	var err error
	c.secretUseCaseInit.Do(func() {
		c.secretUseCase, err = c.initSecretUseCase()
		if err != nil {
			c.setInitError("secretUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretUseCase, nil
}

// SecretHandler returns the HTTP handler for secret operations.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.setInitError("secretHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// HTTPServer returns the HTTP server instance with its routes registered.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.setInitError("httpServer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("httpServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.setInitError("metricsServer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("metricsServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

func (c *Container) initSecretCache() (secretsUseCase.Cache, error) {
	c.memoryCache = cache.NewMemoryCache(cache.MemoryConfig{
		MaxEntries:      c.config.CacheMaxEntries,
		CleanupInterval: c.config.CacheCleanupInterval,
	})

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for cache: %w", err)
	}
	if provider == nil {
		return c.memoryCache, nil
	}

	err = metrics.RegisterCacheEntriesGauge(provider.MeterProvider(), c.config.MetricsNamespace, c.memoryCache.Len)
	if err != nil {
		return nil, fmt.Errorf("failed to register cache gauge: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for cache: %w", err)
	}
	return cache.NewStoreWithMetrics(c.memoryCache, businessMetrics), nil
}

func (c *Container) initSecretUseCase() (secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string], error) {
	masterKey, err := c.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key for secret use case: %w", err)
	}

	cipherLayer, err := c.CipherLayer()
	if err != nil {
		return nil, fmt.Errorf("failed to get cipher layer for secret use case: %w", err)
	}

	codec, err := c.EnvelopeCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope codec for secret use case: %w", err)
	}

	secretCache, err := c.SecretCache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for secret use case: %w", err)
	}

	useCaseConfig := secretsUseCase.Config[string]{
		MasterKey:      masterKey,
		SecretEncoding: cryptoDomain.Encoding(c.config.SecretEncoding),
		CacheTTL:       c.config.CacheTTL,
		CacheNamespace: c.config.CacheNamespace,
	}
	logger := c.Logger()

	var useCase secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string]
	switch c.config.StorageDriver {
	case config.StoragePostgres, config.StorageMySQL:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret use case: %w", err)
		}
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for secret use case: %w", err)
		}

		var storage secretsUseCase.Storage[*sql.Tx]
		if c.config.StorageDriver == config.StoragePostgres {
			storage = secretsRepository.NewPostgreSQLStorage(db)
		} else {
			storage = secretsRepository.NewMySQLStorage(db)
		}

		sqlUseCase, err := secretsUseCase.NewSecretUseCase[*sql.Tx, string](
			useCaseConfig, storage, secretCache, cipherLayer, codec, logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret use case: %w", err)
		}
		useCase = secretsUseCase.NewTransactionalSecretUseCase[*sql.Tx, string](sqlUseCase, txManager)
	case config.StorageBolt:
		boltStorage, err := c.BoltStorage()
		if err != nil {
			return nil, fmt.Errorf("failed to get bolt storage for secret use case: %w", err)
		}

		// Each write runs in its own bolt transaction. Nesting a Read inside an open
		// Update would deadlock on the single writer lock.
		useCase, err = secretsUseCase.NewSecretUseCase[secretsUseCase.NoTx, string](
			useCaseConfig, secretsUseCase.WithoutTx[*bolt.Tx](boltStorage), secretCache, cipherLayer, codec, logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret use case: %w", err)
		}
	case config.StorageKeyring:
		useCase, err = secretsUseCase.NewSecretUseCase[secretsUseCase.NoTx, string](
			useCaseConfig,
			secretsRepository.NewKeyringStorage[secretsUseCase.NoTx](c.config.KeyringService),
			secretCache, cipherLayer, codec, logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret use case: %w", err)
		}
	case config.StorageMemory:
		useCase, err = secretsUseCase.NewSecretUseCase[secretsUseCase.NoTx, string](
			useCaseConfig,
			secretsRepository.NewMemoryStorage[secretsUseCase.NoTx](),
			secretCache, cipherLayer, codec, logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret use case: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.StorageDriver)
	}

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for secret use case: %w", err)
	}
	return secretsUseCase.NewSecretUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initSecretHandler() (*secretsHTTP.SecretHandler, error) {
	useCase, err := c.SecretUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret use case for secret handler: %w", err)
	}

	return secretsHTTP.NewSecretHandler(
		useCase,
		cryptoDomain.Encoding(c.config.SecretEncoding),
		c.Logger(),
	), nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(
		c.readinessChecks(),
		c.config.ServerHost,
		c.config.ServerPort,
		c.Logger(),
	)
	server.SetupRouter(c.ctx, http.RouterConfig{
		CORSEnabled:          c.config.CORSEnabled,
		CORSAllowOrigins:     c.config.CORSAllowOrigins,
		RateLimitEnabled:     c.config.RateLimitEnabled,
		RateLimitRequestsSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:       c.config.RateLimitBurst,
		MetricsNamespace:     c.config.MetricsNamespace,
	}, secretHandler, metricsProvider)

	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if metricsProvider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		metricsProvider,
	), nil
}

// readinessChecks returns one check per backing component that was initialized for the
// configured storage driver.
func (c *Container) readinessChecks() map[string]http.ReadinessCheck {
	checks := map[string]http.ReadinessCheck{
		"master_key": func(_ context.Context) error {
			return c.masterKey.Use(func(_ []byte) error { return nil })
		},
	}

	switch {
	case c.db != nil:
		db := c.db
		checks["database"] = db.PingContext
	case c.boltStorage != nil:
		boltDB := c.boltStorage.DB()
		checks["bolt"] = func(_ context.Context) error {
			return boltDB.View(func(tx *bolt.Tx) error {
				if tx.Bucket(secretsRepository.EnvelopesBucket) == nil {
					return fmt.Errorf("bucket %q is missing", secretsRepository.EnvelopesBucket)
				}
				return nil
			})
		}
	}

	return checks
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, StorageMemory, cfg.StorageDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, 100000, cfg.KDFIterations)
				assert.Equal(t, "sha256", cfg.KDFDigest)
				assert.Equal(t, 32, cfg.KDFKeyLength)
				assert.Equal(t, 16, cfg.KDFSaltLength)
				assert.Equal(t, "base64url", cfg.EnvelopeEncoding)
				assert.Equal(t, "utf8", cfg.SecretEncoding)
				assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
				assert.Equal(t, time.Minute, cfg.CacheCleanupInterval)
				assert.Equal(t, "secrethold", cfg.MetricsNamespace)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"STORAGE_DRIVER":          "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, StorageMySQL, cfg.StorageDriver)
				assert.True(t, cfg.IsSQL())
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom crypto configuration",
			envVars: map[string]string{
				"KDF_ITERATIONS":    "1000",
				"KDF_DIGEST":        "sha512",
				"KDF_SALT_LENGTH":   "32",
				"ENVELOPE_ENCODING": "hex",
				"SECRET_ENCODING":   "base64",
				"CACHE_TTL_SECONDS": "0",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 1000, cfg.KDFIterations)
				assert.Equal(t, "sha512", cfg.KDFDigest)
				assert.Equal(t, 32, cfg.KDFSaltLength)
				assert.Equal(t, "hex", cfg.EnvelopeEncoding)
				assert.Equal(t, "base64", cfg.SecretEncoding)
				assert.Equal(t, time.Duration(0), cfg.CacheTTL)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				require.NoError(t, os.Setenv(key, value))
			}

			tt.validate(t, Load())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		os.Clearenv()
		return Load()
	}

	t.Run("Error_UnknownStorageDriver", func(t *testing.T) {
		cfg := valid()
		cfg.StorageDriver = "redis"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Error_SQLWithoutConnectionString", func(t *testing.T) {
		cfg := valid()
		cfg.StorageDriver = StoragePostgres
		cfg.DBConnectionString = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Error_ShortSalt", func(t *testing.T) {
		cfg := valid()
		cfg.KDFSaltLength = 8
		assert.Error(t, cfg.Validate())
	})

	t.Run("Error_KMSURIWithoutProvider", func(t *testing.T) {
		cfg := valid()
		cfg.KMSKeyURI = "base64key://abc"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Success_BoltDriver", func(t *testing.T) {
		cfg := valid()
		cfg.StorageDriver = StorageBolt
		assert.NoError(t, cfg.Validate())
	})
}

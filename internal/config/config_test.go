package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"koperasi-backend/internal/config"
)

func validConfig() config.Config {
	var c config.Config
	c.Server.Port = 8080
	c.Database.Host = "localhost"
	c.Database.User = "koperasi"
	c.Database.Database = "koperasi_dev"
	c.SMTP.Host = "localhost"
	c.SMTP.Port = 1025
	c.JWT.Secret = "a-test-secret-that-is-long-enough-123456"
	c.Storage.Type = "local"
	c.Storage.UploadDir = "./uploads"
	return c
}

func TestConfig_Validate(t *testing.T) {
	t.Run("StorageDefaultsFilled", func(t *testing.T) {
		c := validConfig()
		c.Storage.Type = ""
		c.Storage.MaxFileSize = 0
		c.Storage.AllowedTypes = nil

		assert.NoError(t, c.Validate())
		assert.Equal(t, "local", c.Storage.Type)
		assert.Equal(t, int64(5), c.Storage.MaxFileSize)
		assert.Contains(t, c.Storage.AllowedTypes, "image/jpeg")
	})

	t.Run("UnsupportedStorageTypeRejected", func(t *testing.T) {
		c := validConfig()
		c.Storage.Type = "s3"

		assert.Error(t, c.Validate())
	})

	t.Run("ShortJWTSecretRejected", func(t *testing.T) {
		c := validConfig()
		c.JWT.Secret = "too-short"

		assert.Error(t, c.Validate())
	})

	t.Run("SavingsDefaultsFilled", func(t *testing.T) {
		c := validConfig()

		assert.NoError(t, c.Validate())
		assert.Equal(t, int64(100_000), c.Savings.PrincipalAmount)
		assert.Equal(t, int64(50_000), c.Savings.MandatoryAmount)
		assert.Equal(t, 10, c.Savings.MandatoryDueDay)
	})
}

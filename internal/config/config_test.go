package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:         "8460",
		JWTSecret:    "test-secret",
		FeedPageSize: 20,
		UserPageSize: 25,
		Env:          "development",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	c := validConfig()
	c.Port = ""
	assert.Error(t, c.Validate())

	c = validConfig()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())

	c = validConfig()
	c.FeedPageSize = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.UserPageSize = -1
	assert.Error(t, c.Validate())
}

func TestValidateProductionChecks(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = "your-secret-key-change-in-production"
	c.DBPassword = "strong-enough-password"
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c.JWTSecret = "a-very-long-production-secret-value-12345"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c.DBPassword = "strong-enough-password"
	assert.NoError(t, c.Validate())
}

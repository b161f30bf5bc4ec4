package app

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.True(t, cfg.CommissionRate.Equal(decimal.RequireFromString("0.10")))
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "timezone")

	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("COMMISSION_RATE", "1.5")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "commission rate")

	t.Setenv("COMMISSION_RATE", "0.12")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.CommissionRate.Equal(decimal.RequireFromString("0.12")))
}

func TestLoadConfigRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestNilConfigLocation(t *testing.T) {
	var cfg *Config
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.False(t, cfg.IsProduction())
}

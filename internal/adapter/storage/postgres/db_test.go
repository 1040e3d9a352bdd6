package postgres

import (
	"testing"
	"time"

	"ledger-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig_AppliesLimits(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "ledger",
		Password:        "ledgerpass",
		DBName:          "ledger",
		SSLMode:         "disable",
		MaxConns:        20,
		MinConns:        5,
		ConnMaxLifetime: 30 * time.Minute,
	}

	poolCfg, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(20), poolCfg.MaxConns)
	assert.Equal(t, int32(5), poolCfg.MinConns)
	assert.Equal(t, 30*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "localhost", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), poolCfg.ConnConfig.Port)
	assert.Equal(t, "ledger", poolCfg.ConnConfig.Database)
	assert.Equal(t, "ledger", poolCfg.ConnConfig.User)
}

func TestPoolConfig_MinAboveMaxIgnored(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "ledger", SSLMode: "disable",
		MaxConns: 4, MinConns: 10,
	}

	poolCfg, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(4), poolCfg.MaxConns)
	assert.LessOrEqual(t, poolCfg.MinConns, poolCfg.MaxConns)
}

func TestPoolConfig_InvalidDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "bogus-mode"}

	_, err := poolConfig(cfg)
	assert.Error(t, err)
}

// NewPool itself needs a live server; it is exercised by running the binary
// against docker-compose Postgres.

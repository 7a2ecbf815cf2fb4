package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/padelgo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.PostgresConfig{
		User:              "padel",
		Password:          "secret",
		Name:              "padelgo",
		Host:              "db",
		Port:              6543,
		SSLMode:           "disable",
		MaxConns:          25,
		MinConns:          4,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   2 * time.Minute,
		HealthCheckPeriod: 10 * time.Second,
		ConnectTimeout:    7 * time.Second,
		StatementTimeout:  1500 * time.Millisecond,
		ApplicationName:   "padelgo-test",
	}

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(25), pc.MaxConns)
	assert.Equal(t, int32(4), pc.MinConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 2*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, 10*time.Second, pc.HealthCheckPeriod)
	assert.Equal(t, 7*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	assert.Equal(t, "padelgo", pc.ConnConfig.Database)
	assert.Equal(t, "padelgo-test", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "1500", pc.ConnConfig.RuntimeParams["statement_timeout"])
}

func TestPoolConfig_ZeroKeepsDefaults(t *testing.T) {
	cfg := config.PostgresConfig{User: "u", Password: "p", Name: "d", Host: "localhost", Port: 5432, SSLMode: "disable"}

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	def, err := pgxpool.ParseConfig(cfg.DSN())
	require.NoError(t, err)

	assert.Equal(t, def.MaxConns, pc.MaxConns)
	assert.Equal(t, def.MaxConnLifetime, pc.MaxConnLifetime)
	assert.NotContains(t, pc.ConnConfig.RuntimeParams, "statement_timeout")
}

package config

import (
	"os"
	"testing"

	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	logger.IsTest = true
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
	}{
		{
			name: "valid configuration with defaults",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
			},
		},
		{
			name: "memory store without redis",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
				"STORE_DRIVER":   "memory",
				"REDIS_ENABLED":  "false",
				"EVENTS_DRIVER":  "none",
			},
		},
		{
			name:        "missing JWT secret",
			envVars:     map[string]string{},
			expectError: true,
		},
		{
			name: "unknown store driver",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
				"STORE_DRIVER":   "sqlite",
			},
			expectError: true,
		},
		{
			name: "redis events without redis",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
				"REDIS_ENABLED":  "false",
			},
			expectError: true,
		},
		{
			name: "bad default currency",
			envVars: map[string]string{
				"JWT_SECRET_KEY":          testSecret,
				"LEDGER_DEFAULT_CURRENCY": "PESO",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, testSecret, cfg.Server.JwtSecretKey)
			assert.Equal(t, "8080", cfg.Server.Port)
			assert.Equal(t, "PHP", cfg.Ledger.DefaultCurrency)
			assert.Equal(t, 255, cfg.Ledger.DescriptionMaxLength)
		})
	}
}

func TestDatabaseConfig_URL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "ledger",
		Password: "p@ss word",
		Name:     "ledger",
	}
	assert.Equal(t, "postgres://ledger:p%40ss+word@db:5432/ledger?sslmode=disable", cfg.URL())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.URL(), "sslmode=require")
}

func TestDatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "ledger")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_SSL_MODE", "")
	assert.Equal(t, "postgres://ledger:secret@pg:6543/nomadcrew_ledger?sslmode=disable", DatabaseURLFromEnv())

	t.Setenv("DATABASE_URL", "postgres://u:p@h:1/d")
	assert.Equal(t, "postgres://u:p@h:1/d", DatabaseURLFromEnv())
}

func TestConfigurePostgresPool(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:         "localhost",
		Port:         5432,
		User:         "postgres",
		Name:         "ledger",
		SSLMode:      "disable",
		MaxOpenConns: 8,
		MaxIdleConns: 2,
		ConnMaxLife:  "not-a-duration",
	}

	poolCfg, err := ConfigurePostgresPool(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(8), poolCfg.MaxConns)
	assert.Equal(t, int32(2), poolCfg.MinConns)
	assert.Nil(t, poolCfg.ConnConfig.TLSConfig)
	assert.Equal(t, "30m0s", poolCfg.MaxConnLifetime.String())
}

func TestConfigureRedisOptions(t *testing.T) {
	opts := ConfigureRedisOptions(&RedisConfig{Address: "cache:6379", PoolSize: 4, UseTLS: true})
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 4, opts.PoolSize)
	assert.NotNil(t, opts.TLSConfig)
}

func TestLedgerConfig_BalanceCacheTTL(t *testing.T) {
	assert.Equal(t, "5m0s", LedgerConfig{BalanceCacheTTLSecs: 300}.BalanceCacheTTL().String())
}

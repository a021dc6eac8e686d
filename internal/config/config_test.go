package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local,")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	require.Equal(t, 5, cfg.DBConnectRetries)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
	require.False(t, cfg.AllowRegistration)
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load("testdata/does-not-exist.env")
	require.Error(t, err)

	t.Setenv("DB_DSN", "dsn")
	t.Setenv("JWT_SECRET", "")
	_, err = Load("testdata/does-not-exist.env")
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DSN", "dsn")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load("testdata/does-not-exist.env")
	require.Error(t, err)
}

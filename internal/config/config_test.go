package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.True(t, cfg.DBEnabled)
	require.Equal(t, "chronary_time_tracker", cfg.Database.Database)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, "static", cfg.Auth.Mode)
	require.Equal(t, "dev-token=dev-user", cfg.Auth.StaticTokens)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("AUTH_MODE", "remote")
	t.Setenv("AUTH_CACHE_TTL_SECS", "300")

	cfg := Load()
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 5433, cfg.Database.Port)
	require.False(t, cfg.DBEnabled)
	require.Equal(t, "remote", cfg.Auth.Mode)
	require.Equal(t, 300, cfg.Auth.CacheTTLSecs)

	// 非法数字回落到默认值
	t.Setenv("DB_PORT", "not-a-number")
	cfg = Load()
	require.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":7070"
auth:
  mode: remote
  verify_url: "http://auth.internal/verify"
`), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()
	require.Equal(t, ":7070", cfg.HTTP.Addr)
	require.Equal(t, "remote", cfg.Auth.Mode)
	require.Equal(t, "http://auth.internal/verify", cfg.Auth.VerifyURL)
	// 文件没写的键保持env/默认值
	require.Equal(t, "chronary_time_tracker", cfg.Database.Database)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "secret", Database: "tracker", SSLMode: "disable",
	}
	require.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=tracker sslmode=disable",
		c.GetDSN())
}

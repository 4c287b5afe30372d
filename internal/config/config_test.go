package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "CONFIG_FILE", "AUTH_MODE", "ROUTE_CACHE_TTL", "WEBHOOK_MAX_ATTEMPTS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "dev", cfg.Auth.Mode)
	require.Equal(t, 5*time.Minute, cfg.Engine.RouteCacheTTL)
	require.Equal(t, 10, cfg.Webhooks.MaxAttempts)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9999"
auth:
  mode: hmac
  hmacSecret: file-secret
engine:
  routeCacheTtl: 1m
  jobWorkers: 2
rate:
  rps: 10
  burst: 20
`), 0o600))

	t.Setenv("PORT", "7777")
	t.Setenv("AUTH_HMAC_SECRET", "env-secret")
	t.Setenv("ROUTE_CACHE_TTL", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	// Environment beats file, file beats defaults.
	require.Equal(t, ":7777", cfg.Addr)
	require.Equal(t, "hmac", cfg.Auth.Mode)
	require.Equal(t, "env-secret", cfg.Auth.HMACSecret)
	require.Equal(t, 30*time.Second, cfg.Engine.RouteCacheTTL)
	require.Equal(t, 2, cfg.Engine.JobWorkers)
	require.Equal(t, 10.0, cfg.Rate.RPS)
	require.Equal(t, 20, cfg.Rate.Burst)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoaderReloadNotifiesListeners(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9001\"\n"), 0o600))

	l, err := NewLoader(path)
	require.NoError(t, err)
	require.Equal(t, ":9001", l.Config().Addr)

	var seen []string
	l.OnChange(func(c *Config) { seen = append(seen, c.Addr) })

	require.NoError(t, os.WriteFile(path, []byte("addr: \":9002\"\n"), 0o600))
	cfg, err := l.Reload()
	require.NoError(t, err)
	require.Equal(t, ":9002", cfg.Addr)
	require.Equal(t, []string{":9002"}, seen)
	require.Equal(t, ":9002", l.Config().Addr)
}

func TestLoaderWatchPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9001\"\n"), 0o600))

	l, err := NewLoader(path)
	require.NoError(t, err)
	changed := make(chan string, 1)
	l.OnChange(func(c *Config) {
		select {
		case changed <- c.Addr:
		default:
		}
	})
	stop, err := l.Watch()
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("addr: \":9003\"\n"), 0o600))
	select {
	case addr := <-changed:
		require.Equal(t, ":9003", addr)
	case <-time.After(2 * time.Second):
		t.Fatal("config change not observed")
	}
}

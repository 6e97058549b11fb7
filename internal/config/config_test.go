package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"domainintel/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, 8*time.Second, cfg.Pricing.Timeout)
	require.Equal(t, 5*time.Minute, cfg.Pricing.CacheMaxAge)
	require.Zero(t, cfg.Pricing.RatePerSecond)
	require.Equal(t, 5*time.Second, cfg.Registry.LookupTimeout)
	require.False(t, cfg.Registry.DisableWHOIS)
	require.Equal(t, "https://rdap.org/", cfg.Registry.RDAPFallbackURL)
	require.Empty(t, cfg.Redis.Addr)
	require.Empty(t, cfg.JWT.PublicKey)
	require.Equal(t, 10*time.Second, cfg.GracefulShutdownTimeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
http:
  addr: ":9090"
pricing:
  timeout: 3s
registry:
  disableWhois: true
redis:
  addr: "localhost:6379"
trust:
  taxonomyFile: "/etc/domainintel/taxonomy.yaml"
`), 0o600))
	t.Setenv("PRICING_BURST", "9")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 3*time.Second, cfg.Pricing.Timeout)
	require.Equal(t, 9, cfg.Pricing.Burst)
	require.True(t, cfg.Registry.DisableWHOIS)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "/etc/domainintel/taxonomy.yaml", cfg.Trust.TaxonomyFile)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("http: ["), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

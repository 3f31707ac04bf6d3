package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0", cfg.IPAddress)
	assert.Equal(t, 9090, cfg.IPPort)
	assert.Equal(t, Standalone, cfg.Mode)
	assert.Equal(t, 100*time.Millisecond, cfg.SweepInterval)
	assert.Equal(t, uint32(50<<20), cfg.MaxRequestSize)
}

func TestLoadOverridesFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tritedb.toml")
	contents := `
ip_address = "10.0.0.5"
ip_port = 7000
mode = "CLUSTER"
log_level = "DEBUG"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.IPAddress)
	assert.Equal(t, 7000, cfg.IPPort)
	assert.Equal(t, Cluster, cfg.Mode)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	// values not present in the file keep their defaults
	assert.Equal(t, 128, cfg.TCPBacklog)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRITEDB_IP_PORT", "6500")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6500, cfg.IPPort)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

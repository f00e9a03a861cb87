package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorSection struct {
	Epoch        int64  `mapstructure:"epoch"`
	DatacenterID int64  `mapstructure:"datacenter_id"`
	WorkerID     int64  `mapstructure:"worker_id"`
	Guard        string `mapstructure:"guard"`
}

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snowgen.yaml"), []byte(content), 0o644))
}

func TestLoad_Unit(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		loader := New(WithPaths(t.TempDir()))
		require.NoError(t, loader.Load())
	})

	t.Run("yaml file is loaded", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, `
generator:
  epoch: 1577836800000
  datacenter_id: 1
  worker_id: 2
  guard: mutex
`)
		loader := New(WithPaths(dir))
		require.NoError(t, loader.Load())

		var cfg generatorSection
		require.NoError(t, loader.Unmarshal("generator", &cfg))
		assert.Equal(t, int64(1577836800000), cfg.Epoch)
		assert.Equal(t, int64(1), cfg.DatacenterID)
		assert.Equal(t, int64(2), cfg.WorkerID)
		assert.Equal(t, "mutex", cfg.Guard)
	})

	t.Run("environment variable overrides file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "generator:\n  worker_id: 2\n")
		t.Setenv("SNOWGEN_GENERATOR_WORKER_ID", "7")

		loader := New(WithPaths(dir))
		require.NoError(t, loader.Load())
		assert.Equal(t, int64(7), loader.GetInt64("generator.worker_id"))
	})

	t.Run("custom env prefix", func(t *testing.T) {
		t.Setenv("MYAPP_STORE_PATH", "/var/lib/ids")
		loader := New(WithPaths(t.TempDir()), WithEnvPrefix("MYAPP"))
		require.NoError(t, loader.Load())
		assert.Equal(t, "/var/lib/ids", loader.GetString("store.path"))
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4096, cfg.RecursionLimit)
	assert.Equal(t, uint64(1000), cfg.JITHotnessThreshold)
	assert.Equal(t, "tree", cfg.Engine)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysPartialFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "naux.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: vm\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vm", cfg.Engine)
	assert.Equal(t, 4096, cfg.RecursionLimit, "fields absent from the file keep their default")
}

func TestLoadFullFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "naux.yaml")
	content := "recursion_limit: 64\njit_hotness_threshold: 5\nengine: vm\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.RecursionLimit)
	assert.Equal(t, uint64(5), cfg.JITHotnessThreshold)
	assert.Equal(t, "vm", cfg.Engine)
}

func TestLoadInvalidYamlErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "naux.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unterminated\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

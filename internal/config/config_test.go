package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleg578/swiftline"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
reader:
  bufferSize: 64
  emitEmptyLines: false
  separator: ";"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	want := swiftline.DefaultOptions()
	want.BufferSize = 64
	want.EmitEmptyLines = false
	want.Separator = ";"
	assert.Equal(t, want, cfg.Reader)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, os.IsNotExist(err))

	bad := writeConfig(t, dir, "bad.yaml", "reader: [unclosed")
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")

	invalid := writeConfig(t, dir, "invalid.yaml", "reader:\n  quote: \",\"\n")
	_, err = LoadFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config file")
}

func TestLoadFromXDGConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, swiftline.DefaultOptions(), cfg.Reader, "missing config dir yields defaults")

	dir := filepath.Join(home, configDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, swiftline.DefaultOptions(), cfg.Reader, "empty config dir yields defaults")

	writeConfig(t, dir, "config.yml", "reader:\n  encoding: latin1\n  trimLines: true\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "latin1", cfg.Reader.Encoding)
	assert.True(t, cfg.Reader.TrimLines)

	// config.yaml wins over config.yml.
	writeConfig(t, dir, "config.yaml", "reader:\n  strict: true\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Reader.Strict)
	assert.Equal(t, "utf-8", cfg.Reader.Encoding)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := writeConfig(t, t.TempDir(), "custom.yaml", "reader:\n  skipBOM: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Reader.SkipBOM)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDir(t *testing.T) {
	t.Setenv("SPACEKEEPER_CONFIG_DIR", "/env/dir")

	dir, err := resolveConfigDir("/flag/dir")
	require.NoError(t, err)
	assert.Equal(t, "/flag/dir", dir)

	dir, err = resolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/dir", dir)

	t.Setenv("SPACEKEEPER_CONFIG_DIR", "")
	t.Setenv("HOME", "/home/ada")
	dir, err = resolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/ada", configDirName), dir)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()

	v, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, defaultServer, v.GetString(cfgKeyServer))
	assert.Equal(t, outputText, v.GetString(cfgKeyOutput))

	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte("server: http://file:9000\noutput: yaml\n"), 0o600))
	v, err = loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://file:9000", v.GetString(cfgKeyServer))
	assert.Equal(t, outputYAML, v.GetString(cfgKeyOutput))

	t.Setenv("SPACEKEEPER_SERVER", "http://env:9100")
	v, err = loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://env:9100", v.GetString(cfgKeyServer))
}

func TestSaveSessionKeepsOtherKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte("server: http://file:9000\n"), 0o600))
	t.Setenv("SPACEKEEPER_OUTPUT", "json")

	require.NoError(t, saveSession(dir, "tok", "ref"))

	cfg := readConfig(t, dir)
	assert.Equal(t, "http://file:9000", cfg[cfgKeyServer])
	assert.Equal(t, "tok", cfg[cfgKeyToken])
	assert.Equal(t, "ref", cfg[cfgKeyRefreshToken])
	_, hasOutput := cfg[cfgKeyOutput]
	assert.False(t, hasOutput)
}

func TestBadConfigFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte("server: [unclosed\n"), 0o600))
	_, err := loadConfig(dir)
	require.Error(t, err)
}

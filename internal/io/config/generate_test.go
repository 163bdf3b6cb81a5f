package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(configDir, "botanic"))

	switch runtime.GOOS {
	case "linux":
		assert.Contains(t, configDir, ".config")
	case "darwin":
		assert.True(t, strings.Contains(configDir, "Application Support") || strings.Contains(configDir, ".config"))
	case "windows":
		assert.Contains(t, strings.ToLower(configDir), "appdata")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	configPath, err := GetDefaultConfigPath()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(configPath, "botanic.yaml"))
	assert.Contains(t, configPath, "botanic")
	assert.True(t, filepath.IsAbs(configPath))
}

func TestGenerateDefaultConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	configPath, err := GenerateDefaultConfig()
	require.NoError(t, err)
	require.NotEmpty(t, configPath)

	_, err = os.Stat(configPath)
	require.NoError(t, err)

	require.NoError(t, ValidateGeneratedConfig(configPath))

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "database:")
	assert.Contains(t, contentStr, "search:")
	assert.Contains(t, contentStr, "log:")
	assert.Contains(t, contentStr, "host: localhost")
	assert.Contains(t, contentStr, "port: 5432")
}

func TestGenerateDefaultConfig_CreatesParentDirs(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	configPath, err := GenerateDefaultConfig()
	require.NoError(t, err)

	stat, err := os.Stat(filepath.Dir(configPath))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestGenerateDefaultConfig_FileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	_, err := GenerateDefaultConfig()
	require.NoError(t, err)

	// Second call must not overwrite.
	_, err = GenerateDefaultConfig()
	assert.Error(t, err)
}

func TestConfigFileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	exists, err := ConfigFileExists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = GenerateDefaultConfig()
	require.NoError(t, err)

	exists, err = ConfigFileExists()
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestValidateGeneratedConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test.yaml")

	validConfig := `database:
  host: localhost
  port: 5432
  user: postgres
  password: postgres
  database: botanic
  ssl_mode: disable
  batch_size: 500
search:
  return_accepted: true
  exclude_inactive: false
log:
  level: info
  format: text
`
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0644))
	assert.NoError(t, ValidateGeneratedConfig(configPath))

	invalidPath := filepath.Join(tempDir, "invalid.yaml")
	invalidConfig := "database:\n  port: [not, a, number]\n"
	require.NoError(t, os.WriteFile(invalidPath, []byte(invalidConfig), 0644))
	assert.Error(t, ValidateGeneratedConfig(invalidPath))
}

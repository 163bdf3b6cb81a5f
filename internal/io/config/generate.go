package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnames/botanic/pkg/config"
	"gopkg.in/yaml.v3"
)

// GetConfigDir returns the platform-specific configuration directory for
// botanic: ~/.config/botanic on Unix-like systems, %APPDATA%\botanic on
// Windows.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	if filepath.Separator == '/' {
		return config.ConfigDir(homeDir), nil
	}

	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = filepath.Join(homeDir, "AppData", "Roaming")
	}
	return filepath.Join(appData, config.AppName), nil
}

// GetDefaultConfigPath returns the full path to the default config file.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "botanic.yaml"), nil
}

// GenerateDefaultConfig creates a documented default config file at the
// platform-specific location. Returns the path where the config was
// created, or error if generation fails. Does NOT overwrite existing
// config files.
func GenerateDefaultConfig() (string, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists at %s", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	d := config.New()

	yamlContent := `# botanic configuration file
# This file was auto-generated. Edit as needed.
#
# Configuration precedence (highest to lowest):
#   1. CLI flags (--host, --port, etc.)
#   2. Environment variables (BOTANIC_*)
#   3. This config file
#   4. Built-in defaults
#
# For all environment variables, see: go doc github.com/gnames/botanic/pkg/config

database:
  host: ` + d.Database.Host + `
  port: ` + fmt.Sprintf("%d", d.Database.Port) + `
  user: ` + d.Database.User + `
  password: ` + d.Database.Password + `
  database: ` + d.Database.Database + `
  ssl_mode: ` + d.Database.SSLMode + `
  batch_size: ` + fmt.Sprintf("%d", d.Database.BatchSize) + `

search:
  return_accepted: ` + fmt.Sprintf("%t", d.Search.ReturnAccepted) + `
  exclude_inactive: ` + fmt.Sprintf("%t", d.Search.ExcludeInactive) + `
  sort_by_taxon: ` + fmt.Sprintf("%t", d.Search.SortByTaxon) + `
  pacific_centric: ` + fmt.Sprintf("%t", d.Search.PacificCentric) + `
  small_value_threshold: ` + fmt.Sprintf("%d", d.Search.SmallValueThreshold) + `

log:
  level: ` + d.Log.Level + `
  format: ` + d.Log.Format + `
  destination: ` + d.Log.Destination + `

jobs_number: ` + fmt.Sprintf("%d", d.JobsNumber) + `
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// ConfigFileExists checks if a config file exists at the default location.
func ConfigFileExists() (bool, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ValidateGeneratedConfig reads and validates a generated config file.
// Used in tests to ensure generated YAML parses back into a usable Config.
func ValidateGeneratedConfig(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	return nil
}

package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "botanic"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/botanic by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/botanic by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/botanic/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the botanic.yaml file.
// Returns ~/.config/botanic/botanic.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "botanic.yaml")
}

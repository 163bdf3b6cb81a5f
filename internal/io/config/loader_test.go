package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/botanic/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetBotanicEnv(t *testing.T) {
	t.Helper()
	saved := make(map[string]string)
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "BOTANIC_") {
			parts := strings.SplitN(env, "=", 2)
			saved[parts[0]] = parts[1]
			os.Unsetenv(parts[0])
		}
	}
	t.Cleanup(func() {
		for k, v := range saved {
			os.Setenv(k, v)
		}
	})
}

const baseConfigContent = `
database:
  host: config-host
  port: 5432
  user: config-user
  password: config-pass
  database: config-db
  ssl_mode: disable
  batch_size: 250
search:
  return_accepted: false
  exclude_inactive: true
  sort_by_taxon: false
  pacific_centric: true
  small_value_threshold: 6
log:
  level: warn
  format: text
  destination: stdout
`

func TestLoad(t *testing.T) {
	unsetBotanicEnv(t)

	testCases := []struct {
		name             string
		configContent    string
		envVars          map[string]string
		check            func(t *testing.T, cfg *config.Config)
		expectedSource   string
		expectSourcePath bool
	}{
		{
			name:          "env vars override config file",
			configContent: baseConfigContent,
			envVars: map[string]string{
				"BOTANIC_DATABASE_HOST": "env-host",
				"BOTANIC_DATABASE_PORT": "5433",
				"BOTANIC_LOG_LEVEL":     "debug",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "env-host", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "debug", cfg.Log.Level)
				// Untouched-by-env fields still come from the file.
				assert.Equal(t, "config-user", cfg.Database.User)
			},
			expectedSource:   "file",
			expectSourcePath: true,
		},
		{
			name:          "no config file, env vars only",
			configContent: "",
			envVars: map[string]string{
				"BOTANIC_DATABASE_HOST": "env-only-host",
				"BOTANIC_DATABASE_USER": "testuser",
			},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "env-only-host", cfg.Database.Host)
				assert.Equal(t, "testuser", cfg.Database.User)
			},
			expectedSource:   "defaults+env",
			expectSourcePath: false,
		},
		{
			name:          "config file only, no env vars",
			configContent: baseConfigContent,
			envVars:       nil,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "config-host", cfg.Database.Host)
				assert.Equal(t, "config-user", cfg.Database.User)
				assert.Equal(t, 250, cfg.Database.BatchSize)
				assert.True(t, cfg.Search.ExcludeInactive)
				assert.Equal(t, 6, cfg.Search.SmallValueThreshold)
			},
			expectedSource:   "file",
			expectSourcePath: true,
		},
		{
			name:          "no config file, no env vars falls back to defaults",
			configContent: "",
			envVars:       nil,
			check: func(t *testing.T, cfg *config.Config) {
				want := config.New()
				assert.Equal(t, want.Database, cfg.Database)
				assert.Equal(t, want.Search, cfg.Search)
			},
			expectedSource:   "defaults",
			expectSourcePath: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := ""

			if tc.configContent != "" {
				configPath = filepath.Join(tempDir, "botanic.yaml")
				require.NoError(t, os.WriteFile(configPath, []byte(tc.configContent), 0644))
			} else {
				t.Setenv("HOME", tempDir)
			}

			for key, value := range tc.envVars {
				t.Setenv(key, value)
			}

			result, err := Load(configPath)
			require.NoError(t, err)

			tc.check(t, result.Config)
			assert.Equal(t, tc.expectedSource, result.Source)
			if tc.expectSourcePath {
				assert.NotEmpty(t, result.SourcePath)
			} else {
				assert.Empty(t, result.SourcePath)
			}
		})
	}
}

func TestLoad_ExplicitMissingPathErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/botanic.yaml")
	assert.Error(t, err)
}

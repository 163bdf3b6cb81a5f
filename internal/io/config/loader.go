// Package config provides I/O operations for loading configuration from
// files, environment variables, and flags.
// This is an impure package that handles file system and flag operations.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gnames/botanic/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadResult carries the merged Config along with where it came from, so
// callers can log a useful startup message.
type LoadResult struct {
	Config *config.Config

	// Source is one of "file", "defaults+env", "defaults".
	Source string

	// SourcePath is the config file path, set only when Source is "file".
	SourcePath string
}

// Load reads configuration following the precedence documented in
// pkg/config: CLI flags (bound separately via BindFlags) > environment
// variables (BOTANIC_ prefix) > botanic.yaml > built-in defaults.
//
// If configPath is empty, it searches default locations:
//   - ./botanic.yaml
//   - config.ConfigDir(homeDir)/botanic.yaml
func Load(configPath string) (*LoadResult, error) {
	defaults := config.New()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("botanic")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, defaults)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(config.AppName)
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(config.ConfigDir(homeDir))
		}
	}

	source := "defaults"
	sourcePath := ""

	err := v.ReadInConfig()
	switch {
	case err == nil:
		source = "file"
		sourcePath = v.ConfigFileUsed()
	case isConfigFileNotFound(err):
		if hasBotanicEnv() {
			source = "defaults+env"
		}
	case configPath != "":
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if hasBotanicEnv() {
			source = "defaults+env"
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &LoadResult{Config: &cfg, Source: source, SourcePath: sourcePath}, nil
}

func isConfigFileNotFound(err error) bool {
	_, ok := err.(viper.ConfigFileNotFoundError)
	return ok
}

func hasBotanicEnv() bool {
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "BOTANIC_") {
			return true
		}
	}
	return false
}

// setDefaults registers every persistent field of defaults with viper so
// that v.Unmarshal fills them in even when absent from the config file,
// and so AutomaticEnv recognizes the corresponding BOTANIC_* keys.
func setDefaults(v *viper.Viper, d *config.Config) {
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.batch_size", d.Database.BatchSize)

	v.SetDefault("search.return_accepted", d.Search.ReturnAccepted)
	v.SetDefault("search.exclude_inactive", d.Search.ExcludeInactive)
	v.SetDefault("search.sort_by_taxon", d.Search.SortByTaxon)
	v.SetDefault("search.pacific_centric", d.Search.PacificCentric)
	v.SetDefault("search.small_value_threshold", d.Search.SmallValueThreshold)

	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.destination", d.Log.Destination)

	v.SetDefault("jobs_number", d.JobsNumber)
}

// BindFlags binds cobra command flags to the Config, using Option
// functions so invalid flag values are rejected with a warning rather
// than corrupting the config (per pkg/config's design: Update is the
// only way to mutate a Config).
func BindFlags(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	var opts []config.Option

	flags := cmd.Flags()
	if s, err := flags.GetString("host"); err == nil && flags.Changed("host") {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if i, err := flags.GetInt("port"); err == nil && flags.Changed("port") {
		opts = append(opts, config.OptDatabasePort(i))
	}
	if s, err := flags.GetString("user"); err == nil && flags.Changed("user") {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s, err := flags.GetString("password"); err == nil && flags.Changed("password") {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	if s, err := flags.GetString("database"); err == nil && flags.Changed("database") {
		opts = append(opts, config.OptDatabaseDatabase(s))
	}
	if s, err := flags.GetString("ssl-mode"); err == nil && flags.Changed("ssl-mode") {
		opts = append(opts, config.OptDatabaseSSLMode(s))
	}

	cfg.Update(opts)
	return cfg, nil
}

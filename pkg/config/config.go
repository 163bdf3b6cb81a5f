// Package config provides configuration management for the botanic
// collection core.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > botanic.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in botanic.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, botanic.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Search: return_accepted, exclude_inactive, sort_by_taxon, pacific_centric,
//     small_value_threshold
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use BOTANIC_ prefix with underscores for nesting:
//
//	BOTANIC_DATABASE_HOST=localhost
//	BOTANIC_DATABASE_PORT=5432
//	BOTANIC_LOG_LEVEL=info
//	BOTANIC_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete botanic-collection-core configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Search contains preferences consumed by the search dispatcher and
	// evaluator (§6 "preferences store").
	Search SearchConfig `mapstructure:"search" yaml:"search"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the configured number of concurrent workers. No code in
	// this module reads it: the batch rebuild runs on a single worker and
	// the search dispatcher runs its strategies one after another.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the configured number of rows per batch rebuild chunk.
	// The rebuild does not read it: pkg/history.ChunkSize sizes each chunk
	// at about 5% of the rows.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// SearchConfig mirrors the "preferences store" of §6: toggles read by the
// dispatcher (C6) and evaluator (C5) rather than hard-coded behavior.
type SearchConfig struct {
	// ReturnAccepted enables synonym augmentation (§4.5.9): accepted/synonym
	// counterparts of mapper-search results are added to the result set.
	ReturnAccepted bool `mapstructure:"return_accepted" yaml:"return_accepted"`

	// ExcludeInactive is the stored exclude_inactive preference. No search
	// code reads it: results are not filtered on the `active` hybrid
	// attribute (§4.2).
	ExcludeInactive bool `mapstructure:"exclude_inactive" yaml:"exclude_inactive"`

	// SortByTaxon is the stored sort_by_taxon preference. The dispatcher
	// does not read it and returns results in first-seen order.
	SortByTaxon bool `mapstructure:"sort_by_taxon" yaml:"sort_by_taxon"`

	// PacificCentric is the stored pacific_centric preference. The
	// distribution-map renderer does not read it; every map spans
	// longitudes -180..180 (§6 distribution_map).
	PacificCentric bool `mapstructure:"pacific_centric" yaml:"pacific_centric"`

	// SmallValueThreshold is the configured minimum length of a value-list
	// term. The small-value guard (§4.5.10) does not read it: pkg/plan
	// treats a term of 3 bytes or fewer as short.
	SmallValueThreshold int `mapstructure:"small_value_threshold" yaml:"small_value_threshold"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "botanic",
			SSLMode:   "disable",
			BatchSize: 500, // see DatabaseConfig.BatchSize
		},
		Search: SearchConfig{
			ReturnAccepted:      true,
			ExcludeInactive:     false,
			SortByTaxon:         true,
			PacificCentric:      false,
			SmallValueThreshold: 4,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}

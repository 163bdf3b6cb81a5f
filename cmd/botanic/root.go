package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gnames/botanic/internal/io/config"
	pkgconfig "github.com/gnames/botanic/pkg/config"
	"github.com/gnames/botanic/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *pkgconfig.Config
	log     *slog.Logger
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "botanic",
		Short: "botanic manages a botanic-collection database and its search engine",
		Long: `botanic is a command-line tool for managing the lifecycle of the
PostgreSQL database behind a desktop botanic-collection manager: its
taxonomic domain model (families, genera, species, synonymy, geographic
distributions) and its typed query/search engine.

The tool supports the following functionalities:

- Database Schema Management: create and migrate the database schema.
- Search: run domain-prefix, value-list, full-binomial, and mapper queries.
- Rebuild: recompute derived full names and geography areas after bulk
  edits (no history records are written).

Configuration is managed through a botanic.yaml file, environment variables
(with BOTANIC_ prefix), and command-line flags.

For more information, see the project's README file.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-generate config file on first run if it doesn't exist
			if cfgFile == "" {
				// Check if default config exists
				exists, err := config.ConfigFileExists()
				if err != nil {
					return fmt.Errorf("failed to check config file: %w", err)
				}

				if !exists {
					// Generate default config
					generatedPath, err := config.GenerateDefaultConfig()
					if err != nil {
						// Only warn, don't fail - can use defaults
						fmt.Printf("Warning: could not generate config file: %v\n", err)
					} else {
						fmt.Printf("Generated default config at: %s\n", generatedPath)
					}
				}
			}

			// Load configuration
			result, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = result.Config
			if homeDir, err := os.UserHomeDir(); err == nil {
				cfg.HomeDir = homeDir
			}

			// Initialize logger with config
			log = logger.New(&cfg.Log, cfg.HomeDir)

			// Display config source using logger
			switch result.Source {
			case "file":
				log.Info("config loaded", "source", "file", "path", result.SourcePath)
			case "defaults+env":
				log.Info("config loaded", "source", "defaults with environment overrides")
			case "defaults":
				log.Info("config loaded", "source", "built-in defaults")
			}

			return nil
		},
	}

	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./botanic.yaml or ~/.config/botanic/botanic.yaml)")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for botanic")

	// Add subcommands
	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getSearchCmd(),
		getRebuildCmd(),
	)

	return rootCmd
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *pkgconfig.Config {
	return cfg
}

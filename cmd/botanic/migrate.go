package main

import (
	"context"
	"fmt"

	iodatabase "github.com/gnames/botanic/internal/io/database"
	ioschema "github.com/gnames/botanic/internal/io/schema"
	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/lifecycle"
	"github.com/spf13/cobra"
)

func getMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Applies database migrations",
		Long: `Applies all pending database migrations to bring the schema to the
latest version.

Migrate runs GORM AutoMigrate against the current schema, which is safe
to run repeatedly: it adds missing tables, columns, and indexes, but
never drops or alters existing data. Run this after upgrading botanic
to pick up new schema changes without losing existing collection data.

Examples:
  botanic migrate
  botanic migrate --config custom.yaml`,
		RunE: runMigrate,
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	var op database.Operator = iodatabase.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	fmt.Printf("Connected to database: %s@%s:%d/%s\n",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	var sm lifecycle.SchemaManager = ioschema.NewManager(op)

	fmt.Println("Applying migrations...")
	if err := sm.Migrate(ctx, cfg); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	fmt.Println("✓ Migrations applied successfully")
	return nil
}

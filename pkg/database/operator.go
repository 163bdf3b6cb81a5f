// Package database defines the contract for low-level PostgreSQL lifecycle
// operations (connect, DDL execution, maintenance) used by the schema
// manager and CLI commands. Implementations live in internal/io/database.
package database

import (
	"context"

	"github.com/gnames/botanic/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines low-level PostgreSQL operations needed for schema
// lifecycle management and maintenance. It is intentionally thin: query
// execution for the domain (taxon CRUD, search) goes through GORM or
// pgx directly in the repository implementations, not through Operator.
type Operator interface {
	// Connect establishes a connection pool to PostgreSQL.
	Connect(ctx context.Context, cfg *config.DatabaseConfig) error

	// Close releases the connection pool.
	Close() error

	// Pool returns the underlying pgxpool, or nil if not connected.
	Pool() *pgxpool.Pool

	// CreateSchema applies a batch of DDL statements, optionally dropping
	// existing tables first when force is true.
	CreateSchema(ctx context.Context, ddlStatements []string, force bool) error

	// TableExists reports whether tableName exists in the current schema.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// DropAllTables drops every table in the current schema (destructive).
	DropAllTables(ctx context.Context) error

	// ExecuteDDL runs a single DDL statement.
	ExecuteDDL(ctx context.Context, ddl string) error

	// ExecuteDDLBatch runs a batch of DDL statements in order.
	ExecuteDDLBatch(ctx context.Context, ddlStatements []string) error

	// EnableExtension enables a PostgreSQL extension (e.g. "uuid-ossp").
	EnableExtension(ctx context.Context, extensionName string) error

	// VacuumAnalyze runs VACUUM ANALYZE on the given tables.
	VacuumAnalyze(ctx context.Context, tableNames []string) error

	// CreateIndexConcurrently runs CREATE INDEX CONCURRENTLY for indexDDL.
	CreateIndexConcurrently(ctx context.Context, indexDDL string) error

	// RefreshMaterializedView refreshes a materialized view, optionally
	// using REFRESH MATERIALIZED VIEW CONCURRENTLY.
	RefreshMaterializedView(ctx context.Context, viewName string, concurrently bool) error

	// SetStatisticsTarget sets the planner statistics target for a column.
	SetStatisticsTarget(ctx context.Context, tableName, columnName string, target int) error

	// GetDatabaseSize returns the current database size in bytes.
	GetDatabaseSize(ctx context.Context) (int64, error)

	// GetTableSize returns a table's size in bytes.
	GetTableSize(ctx context.Context, tableName string) (int64, error)

	// ListTables lists every table in the current schema.
	ListTables(ctx context.Context) ([]string, error)

	// SetCollation applies "C" collation to columns that need
	// byte-exact sorting (scientific-name columns, §6).
	SetCollation(ctx context.Context) error
}

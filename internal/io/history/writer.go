// Package history implements the impure half of the History / Event Bus
// component (C7 of spec.md §4.7): a Repository that decorates a bare
// internal/io/taxon.Repository, writing a pkg/history.Record on every
// committed mutation and recomputing Species.full_name/full_sci_name
// (cascading a Genus.update to its Species) and Geography.approx_area,
// all inside the single transaction internal/io/dbtx threads through to
// the wrapped Repository so the row write and its history entry commit
// or roll back together.
package history

import (
	"context"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/history"
	"github.com/gnames/gn"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// execer is satisfied by pgx.Tx (and *pgxpool.Pool), the minimal surface
// Writer needs to insert a history row.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
}

// Writer persists pkg/history.Record rows.
type Writer struct{}

// NewWriter returns a Writer.
func NewWriter() *Writer { return &Writer{} }

// Write encodes rec's diffs and inserts a history row via tx. A nil rec
// (e.g. an Update that changed nothing) is a no-op, matching
// pkg/history.NewRecord's "skip if unchanged" contract.
func (w *Writer) Write(ctx context.Context, tx execer, rec *history.Record) error {
	if rec == nil {
		return nil
	}
	diff, err := history.EncodeDiffs(rec.Diffs)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO history (id, table_name, row_id, operation, diff)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), rec.Table, rec.RowID, string(rec.Operation), diff)
	if err != nil {
		return &gn.Error{Code: errcode.HistoryWriteError, Msg: "failed to write history record", Err: err}
	}
	return nil
}

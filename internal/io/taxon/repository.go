// Package taxon implements the persistence half of the Domain Entities &
// Invariants component (C2 of spec.md §4.2): a pkg/taxon.Repository that
// validates via pkg/taxon.Validate* and persists to PostgreSQL via pgx,
// the same raw-SQL-over-pgxpool style internal/io/search and
// internal/io/database/operator.go already use (GORM owns the schema
// shape via pkg/schema/internal/io/schema; this package owns the rows).
// It enforces invariant 6 (InUseError on a blocked delete) and invariant
// 5 (cascading delete of a taxon's owned notes/pictures/synonym
// edges/distributions/vernacular names). C7 history + derived-field
// recomputation is layered on top by internal/io/history, which decorates
// a Repository built here rather than being built into it, so the bare
// CRUD and the event-bus behavior can be tested independently.
package taxon

import (
	"context"
	"fmt"

	"github.com/gnames/botanic/internal/io/dbtx"
	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/gnames/gn"
	"github.com/gnames/gnuuid"
	"github.com/jackc/pgx/v5"
)

// Repository is a pgx-backed pkg/taxon.Repository. It is the bare
// CRUD/invariant layer; construct it via NewRepository and wrap it with
// internal/io/history.NewRepository to also get C7 wiring.
type Repository struct {
	db database.Operator

	// AccessionCheck, when set, lets the external Accession/Plant
	// subsystem (§6) report whether a species has accessions, for
	// invariant 6. The core never persists accession data itself, so
	// without an integration wired in here DeleteSpecies can only enforce
	// the invariant on what this database actually owns; this hook is
	// where that external check plugs in.
	AccessionCheck func(ctx context.Context, speciesID string) (bool, error)
}

// NewRepository returns a Repository backed by an already-connected
// database.Operator.
func NewRepository(db database.Operator) *Repository {
	return &Repository{db: db}
}

var _ taxon.Repository = (*Repository)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// method below run either standalone or inside a shared transaction
// from dbtx.FromContext without two code paths.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// q returns the transaction dbtx carries on ctx, or the pool otherwise.
func (r *Repository) q(ctx context.Context) querier {
	if tx, ok := dbtx.FromContext(ctx); ok {
		return tx
	}
	return r.db.Pool()
}

// runTx runs fn inside the transaction already on ctx if there is one
// (so a decorator like internal/io/history can group several statements
// into one commit), otherwise opens and commits/rolls back its own.
func (r *Repository) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := dbtx.FromContext(ctx); ok {
		return fn(ctx)
	}
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(dbtx.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func dbError(msg string, err error) error {
	return &gn.Error{Code: errcode.DBConnectionError, Msg: msg, Err: err}
}

// ---- Family ----

// CreateFamily validates and inserts f, generating a content-addressed id
// from the epithet (mirroring the teacher's gnuuid NameString.ID scheme)
// when f.ID is empty.
func (r *Repository) CreateFamily(ctx context.Context, f *taxon.Family) (*taxon.Family, error) {
	if err := taxon.ValidateFamily(f); err != nil {
		return nil, err
	}
	out := *f
	if out.ID == "" {
		out.ID = gnuuid.New(out.Epithet).String()
	}

	err := r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			INSERT INTO family (id, epithet, qualifier, cites, author)
			VALUES ($1, $2, $3, $4, $5)`,
			out.ID, out.Epithet, string(out.Qualifier), citesToNull(out.Cites), out.Author)
		return err
	})
	if err != nil {
		return nil, dbError("failed to create family", err)
	}
	return &out, nil
}

// UpdateFamily validates patch and overwrites every mutable column of
// the family identified by id.
func (r *Repository) UpdateFamily(ctx context.Context, id string, patch *taxon.Family) (*taxon.Family, error) {
	if err := taxon.ValidateFamily(patch); err != nil {
		return nil, err
	}
	out := *patch
	out.ID = id

	err := r.runTx(ctx, func(ctx context.Context) error {
		tag, err := r.q(ctx).Exec(ctx, `
			UPDATE family SET epithet = $1, qualifier = $2, cites = $3, author = $4
			WHERE id = $5`,
			out.Epithet, string(out.Qualifier), citesToNull(out.Cites), out.Author, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("family", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFamily enforces invariant 6 (refuses while the family has
// genera) then cascades per invariant 5: notes, pictures, and synonym
// edges (both as accepted and as synonym) owned by the family.
func (r *Repository) DeleteFamily(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		var n int
		if err := r.q(ctx).QueryRow(ctx, `SELECT count(*) FROM genus WHERE family_id = $1`, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return inUseError(errcode.InUseFamilyHasGeneraError,
				fmt.Sprintf("family %s has %d genera and cannot be deleted (invariant 6)", id, n))
		}

		for _, stmt := range []string{
			`DELETE FROM family_note WHERE family_id = $1`,
			`DELETE FROM family_picture WHERE family_id = $1`,
			`DELETE FROM family_synonym WHERE accepted_id = $1 OR synonym_id = $1`,
		} {
			if _, err := r.q(ctx).Exec(ctx, stmt, id); err != nil {
				return err
			}
		}
		tag, err := r.q(ctx).Exec(ctx, `DELETE FROM family WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("family", id)
		}
		return nil
	})
}

// GetFamily loads a family by id.
func (r *Repository) GetFamily(ctx context.Context, id string) (*taxon.Family, error) {
	row := r.q(ctx).QueryRow(ctx, `
		SELECT id, epithet, qualifier, cites, author FROM family WHERE id = $1`, id)

	var f taxon.Family
	var qualifier string
	var cites *string
	if err := row.Scan(&f.ID, &f.Epithet, &qualifier, &cites, &f.Author); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errNotFound("family", id)
		}
		return nil, dbError("failed to load family", err)
	}
	f.Qualifier = taxon.Qualifier(qualifier)
	f.Cites = citesFromNull(cites)
	return &f, nil
}

// Package search implements the Search Engine's DB-aware half (C6 of
// spec.md §4.6): running a compiled pkg/plan.Plan against PostgreSQL via
// pgx, and the value-list/binomial dialects' direct table scans. Every
// pkg/search.Strategy is pure orchestration; this package is the only
// place that opens a connection.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/plan"
	"github.com/gnames/botanic/pkg/query"
	"github.com/gnames/gn"
)

// PlanExecutor runs a compiled plan.Plan by executing its rendered SQL
// and scanning the root table's id column (pkg/search.PlanExecutor).
type PlanExecutor struct {
	DB database.Operator
}

// NewPlanExecutor returns a PlanExecutor backed by an already-connected
// database.Operator.
func NewPlanExecutor(db database.Operator) *PlanExecutor {
	return &PlanExecutor{DB: db}
}

// Execute runs p.SQL() with p.Args and collects the matching ids.
func (e *PlanExecutor) Execute(ctx context.Context, p *plan.Plan) ([]string, error) {
	rows, err := e.DB.Pool().Query(ctx, p.SQL(), p.Args...)
	if err != nil {
		return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "failed to execute search plan", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "failed to scan search result", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "error iterating search results", Err: err}
	}
	return ids, nil
}

// ValueListExecutor implements the value-list dialect (§4.4, §4.5 item
// 10): a prefix scan of every taxon's display string across the
// searchable domains, OR'd together the same way DomainPrefixStrategy
// ORs a single domain's SearchableColumns.
type ValueListExecutor struct {
	DB       database.Operator
	Registry *plan.DomainRegistry
	// Domains lists which registered domains participate in a value-list
	// scan, in result order (§4.4 "across the whole collection").
	Domains []string
}

// NewValueListExecutor returns a ValueListExecutor scanning the given
// domains (by registry name) for value-list prefix matches.
func NewValueListExecutor(db database.Operator, reg *plan.DomainRegistry, domains []string) *ValueListExecutor {
	return &ValueListExecutor{DB: db, Registry: reg, Domains: domains}
}

// SearchValueList scans each configured domain's SearchableColumns for a
// case-insensitive prefix match against any of values, unioning ids
// across domains and columns in first-seen order.
func (e *ValueListExecutor) SearchValueList(ctx context.Context, values []string) ([]string, error) {
	seen := map[string]bool{}
	var ids []string

	for _, domainName := range e.Domains {
		d, err := e.Registry.Resolve(domainName)
		if err != nil {
			continue
		}
		if len(d.SearchableColumns) == 0 {
			continue
		}

		var conds []string
		var args []any
		for _, col := range d.SearchableColumns {
			for _, v := range values {
				args = append(args, v+"%")
				conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
			}
		}
		sql := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s",
			d.PrimaryKey, d.Table, strings.Join(conds, " OR "))

		rows, err := e.DB.Pool().Query(ctx, sql, args...)
		if err != nil {
			return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "failed to execute value-list scan on " + d.Table, Err: err}
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "failed to scan value-list result", Err: err}
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "error iterating value-list results", Err: err}
		}
	}
	return ids, nil
}

// BinomialExecutor implements the full-binomial dialect (§4.4, spec.md
// S6): a prefix scan of species joined to genus.
type BinomialExecutor struct {
	DB database.Operator
}

// NewBinomialExecutor returns a BinomialExecutor.
func NewBinomialExecutor(db database.Operator) *BinomialExecutor {
	return &BinomialExecutor{DB: db}
}

// SearchBinomial scans species for a genus-epithet prefix, optionally
// narrowed by species-epithet and cultivar-epithet prefixes (§4.4
// Binomial variant).
func (e *BinomialExecutor) SearchBinomial(ctx context.Context, b *query.Binomial) ([]string, error) {
	sql := `SELECT DISTINCT species.id FROM species
		JOIN genus ON genus.id = species.genus_id
		WHERE genus.epithet ILIKE $1`
	args := []any{b.GenusPrefix + "%"}

	if b.HasSpecies {
		args = append(args, b.SpeciesPrefix+"%")
		sql += fmt.Sprintf(" AND species.epithet ILIKE $%d", len(args))
	}
	if b.HasCultivar {
		args = append(args, b.CultivarPrefix+"%")
		sql += fmt.Sprintf(" AND species.cultivar_epithet ILIKE $%d", len(args))
	}

	rows, err := e.DB.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "failed to execute binomial scan", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "failed to scan binomial result", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &gn.Error{Code: errcode.SearchExecError, Msg: "error iterating binomial results", Err: err}
	}
	return ids, nil
}

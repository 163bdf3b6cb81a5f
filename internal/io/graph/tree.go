// Package graph implements the persistence half of the Geography Tree
// component (C3 of spec.md §4.3): a pkg/graph.GeographyTree backed by
// PostgreSQL recursive CTEs, the way the spec requires Ancestors and
// Descendants to be computed rather than walking row-by-row in Go.
package graph

import (
	"context"

	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/graph"
	"github.com/gnames/gn"
	"github.com/jackc/pgx/v5"
)

// Tree is a pgx-backed pkg/graph.GeographyTree over the geography table.
type Tree struct {
	db database.Operator
}

// NewTree returns a Tree backed by an already-connected database.Operator.
func NewTree(db database.Operator) *Tree {
	return &Tree{db: db}
}

var _ graph.GeographyTree = (*Tree)(nil)

func dbError(msg string, err error) error {
	return &gn.Error{Code: errcode.DBConnectionError, Msg: msg, Err: err}
}

// Parent returns id's parent_id, or nil at a root.
func (t *Tree) Parent(ctx context.Context, id string) (*string, error) {
	var parentID *string
	err := t.db.Pool().QueryRow(ctx, `SELECT parent_id FROM geography WHERE id = $1`, id).Scan(&parentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, dbError("geography node not found", err)
		}
		return nil, dbError("failed to load geography parent", err)
	}
	return parentID, nil
}

// Children returns the ids of id's direct children.
func (t *Tree) Children(ctx context.Context, id string) ([]string, error) {
	rows, err := t.db.Pool().Query(ctx, `SELECT id FROM geography WHERE parent_id = $1`, id)
	if err != nil {
		return nil, dbError("failed to load geography children", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Ancestors walks up via a recursive CTE, root first. The CTE's path
// array guards against revisiting a node; if the walk stops short of a
// root (the last row still has a parent_id) that guard fired, meaning
// the tree has a cycle.
func (t *Tree) Ancestors(ctx context.Context, id string) ([]string, error) {
	rows, err := t.db.Pool().Query(ctx, `
		WITH RECURSIVE anc AS (
			SELECT id, parent_id, 0 AS depth, ARRAY[id] AS path
			FROM geography WHERE id = $1
			UNION ALL
			SELECT g.id, g.parent_id, anc.depth + 1, anc.path || g.id
			FROM geography g
			JOIN anc ON g.id = anc.parent_id
			WHERE NOT g.id = ANY(anc.path)
		)
		SELECT id, parent_id FROM anc ORDER BY depth DESC`, id)
	if err != nil {
		return nil, dbError("failed to walk geography ancestors", err)
	}
	defer rows.Close()

	var ids []string
	var parentIDs []*string
	for rows.Next() {
		var rowID string
		var parentID *string
		if err := rows.Scan(&rowID, &parentID); err != nil {
			return nil, dbError("failed to scan geography ancestor", err)
		}
		ids = append(ids, rowID)
		parentIDs = append(parentIDs, parentID)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("failed to walk geography ancestors", err)
	}
	if len(ids) == 0 {
		return nil, dbError("geography node not found", pgx.ErrNoRows)
	}
	// ids[0] is the oldest ancestor the walk reached; if it still has a
	// parent, the path guard cut the walk off mid-cycle rather than at an
	// actual root.
	if parentIDs[0] != nil {
		return nil, graph.ErrGeographyCycle
	}
	// Drop id itself, which ORDER BY depth DESC places last.
	return ids[:len(ids)-1], nil
}

// Descendants walks down via a recursive CTE.
func (t *Tree) Descendants(ctx context.Context, id string) ([]string, error) {
	rows, err := t.db.Pool().Query(ctx, `
		WITH RECURSIVE desc_nodes AS (
			SELECT id, ARRAY[id] AS path
			FROM geography WHERE parent_id = $1
			UNION ALL
			SELECT g.id, desc_nodes.path || g.id
			FROM geography g
			JOIN desc_nodes ON g.parent_id = desc_nodes.id
			WHERE NOT g.id = ANY(desc_nodes.path)
		)
		SELECT id FROM desc_nodes`, id)
	if err != nil {
		return nil, dbError("failed to walk geography descendants", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Area returns the node's approx_area.
func (t *Tree) Area(ctx context.Context, id string) (float64, error) {
	var area float64
	err := t.db.Pool().QueryRow(ctx, `SELECT approx_area FROM geography WHERE id = $1`, id).Scan(&area)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, dbError("geography node not found", err)
		}
		return 0, dbError("failed to load geography area", err)
	}
	return area, nil
}

// SpeciesInGeography returns species ids distributed in id, any of its
// ancestors, or any of its descendants.
func (t *Tree) SpeciesInGeography(ctx context.Context, id string) ([]string, error) {
	ancestors, err := t.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}
	descendants, err := t.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := append(append([]string{id}, ancestors...), descendants...)

	rows, err := t.db.Pool().Query(ctx, `
		SELECT DISTINCT species_id FROM species_distribution WHERE geography_id = ANY($1)`, ids)
	if err != nil {
		return nil, dbError("failed to load species in geography", err)
	}
	defer rows.Close()

	var speciesIDs []string
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, dbError("failed to scan species id", err)
		}
		speciesIDs = append(speciesIDs, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("failed to load species in geography", err)
	}
	return speciesIDs, nil
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dbError("failed to scan geography id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("failed to scan geography ids", err)
	}
	return ids, nil
}

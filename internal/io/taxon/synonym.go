package taxon

import (
	"context"
	"fmt"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/gnames/gn"
	"github.com/jackc/pgx/v5"
)

func synonymTable(rnk taxon.TaxonRank) (string, error) {
	switch rnk {
	case taxon.RankFamily:
		return "family_synonym", nil
	case taxon.RankGenus:
		return "genus_synonym", nil
	case taxon.RankSpecies:
		return "species_synonym", nil
	default:
		return "", fmt.Errorf("unknown taxon rank %q", rnk)
	}
}

// SetAccepted reassigns taxonID's accepted name (§4.3). acceptedID == nil
// removes any existing edge, making taxonID accepted in its own right.
// Rejects self-reference (testable property 3) and any assignment that
// would close a cycle in the synonym forest (invariant 2): a synonym has
// exactly one accepted name and the edges must stay acyclic.
func (r *Repository) SetAccepted(ctx context.Context, rnk taxon.TaxonRank, taxonID string, acceptedID *string) error {
	table, err := synonymTable(rnk)
	if err != nil {
		return err
	}

	return r.runTx(ctx, func(ctx context.Context) error {
		if acceptedID == nil {
			_, err := r.q(ctx).Exec(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE synonym_id = $1", table), taxonID)
			return err
		}

		if *acceptedID == taxonID {
			return taxon.ErrSynonymSelf
		}
		if err := r.checkNoSynonymCycle(ctx, rnk, taxonID, *acceptedID); err != nil {
			return err
		}

		_, err := r.q(ctx).Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (accepted_id, synonym_id) VALUES ($1, $2)
			ON CONFLICT (synonym_id) DO UPDATE SET accepted_id = EXCLUDED.accepted_id`, table),
			*acceptedID, taxonID)
		return err
	})
}

// checkNoSynonymCycle walks the accepted-name chain starting at
// acceptedID; if it ever reaches back to taxonID, assigning
// taxonID -> acceptedID would close a cycle.
func (r *Repository) checkNoSynonymCycle(ctx context.Context, rnk taxon.TaxonRank, taxonID, acceptedID string) error {
	cur := acceptedID
	// The forest can't be deeper than the number of rows in the edge
	// table; bound the walk generously so a corrupt table can't hang.
	for i := 0; i < 10000; i++ {
		if cur == taxonID {
			return cycleError(
				fmt.Sprintf("assigning %s as the accepted name of %s would close a synonym cycle (invariant 2)",
					acceptedID, taxonID))
		}
		next, err := r.Accepted(ctx, rnk, cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		cur = *next
	}
	return cycleError("synonym chain exceeds maximum depth while checking for cycles")
}

func cycleError(msg string) error {
	return validationError(errcode.ValidationSynonymCycleError, msg)
}

func validationError(code gn.ErrorCode, msg string) error {
	return &gn.Error{Code: code, Msg: msg}
}

// Synonyms lists every taxon whose accepted name is acceptedID.
func (r *Repository) Synonyms(ctx context.Context, rnk taxon.TaxonRank, acceptedID string) ([]string, error) {
	table, err := synonymTable(rnk)
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).Query(ctx,
		fmt.Sprintf("SELECT synonym_id FROM %s WHERE accepted_id = $1", table), acceptedID)
	if err != nil {
		return nil, dbError("failed to load synonyms", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dbError("failed to scan synonym row", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Accepted returns taxonID's accepted name, or nil if taxonID isn't a
// synonym of anything.
func (r *Repository) Accepted(ctx context.Context, rnk taxon.TaxonRank, taxonID string) (*string, error) {
	table, err := synonymTable(rnk)
	if err != nil {
		return nil, err
	}
	var accepted string
	err = r.q(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT accepted_id FROM %s WHERE synonym_id = $1", table), taxonID).Scan(&accepted)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, dbError("failed to load accepted name", err)
	}
	return &accepted, nil
}

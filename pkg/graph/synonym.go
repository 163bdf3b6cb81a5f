// Package graph implements the Synonymy & Distribution Graphs component
// (C3 of spec.md §4.3): directed "is-synonym-of" edges per taxonomic
// rank, and the geography parent/children tree with area-based
// consolidation.
package graph

import (
	"context"

	"github.com/gnames/botanic/pkg/taxon"
)

// SetAccepted implements the `taxon.accepted = other` reassignment
// semantics of §4.3:
//   - no-op if other already is taxonID's accepted taxon.
//   - removes any prior edge pointing *to* taxonID (a synonym has at most
//     one accepted name).
//   - rejects other == taxonID (invariant 2, testable property 3).
//   - adds the edge other -> taxonID.
//
// Passing a nil otherID clears the edge (`accepted = None`).
func SetAccepted(ctx context.Context, repo taxon.Repository, rnk taxon.TaxonRank, taxonID string, otherID *string) error {
	if otherID != nil && *otherID == taxonID {
		return taxon.ErrSynonymSelf
	}

	current, err := repo.Accepted(ctx, rnk, taxonID)
	if err != nil {
		return err
	}
	if current == nil && otherID == nil {
		return nil
	}
	if current != nil && otherID != nil && *current == *otherID {
		return nil
	}

	return repo.SetAccepted(ctx, rnk, taxonID, otherID)
}

// IsSynonymOf reports whether taxonID currently has otherID as its
// accepted name.
func IsSynonymOf(ctx context.Context, repo taxon.Repository, rnk taxon.TaxonRank, taxonID, otherID string) (bool, error) {
	accepted, err := repo.Accepted(ctx, rnk, taxonID)
	if err != nil {
		return false, err
	}
	return accepted != nil && *accepted == otherID, nil
}

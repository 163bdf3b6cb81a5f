package plan

import (
	"context"

	"github.com/gnames/botanic/pkg/taxon"
)

// AugmentWithSynonyms implements §4.5 item 9 "Synonym augmentation":
// after a mapper query runs, when return_accepted is true, every
// returned taxon's accepted name and synonyms are added to the result
// set via the synonym edge tables. The result preserves first-seen
// order and never duplicates an id.
func AugmentWithSynonyms(ctx context.Context, repo taxon.Repository, rnk taxon.TaxonRank, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, id := range ids {
		add(id)
	}
	for _, id := range ids {
		accepted, err := repo.Accepted(ctx, rnk, id)
		if err != nil {
			return nil, err
		}
		if accepted != nil {
			add(*accepted)
		}
		syns, err := repo.Synonyms(ctx, rnk, id)
		if err != nil {
			return nil, err
		}
		for _, s := range syns {
			add(s)
		}
	}
	return out, nil
}

// AugmentVernacularNames follows synonymy between two species' vernacular
// names only when *both* species have at least one vernacular name
// (§4.5 item 9's VernacularName-specific carve-out).
func AugmentVernacularNames(ctx context.Context, repo taxon.Repository, speciesIDs []string, vernacularOf func(speciesID string) ([]string, error)) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	for _, spID := range speciesIDs {
		own, err := vernacularOf(spID)
		if err != nil {
			return nil, err
		}
		if len(own) == 0 {
			continue
		}
		for _, v := range own {
			add(v)
		}

		accepted, err := repo.Accepted(ctx, taxon.RankSpecies, spID)
		if err != nil {
			return nil, err
		}
		counterparts := []string{}
		if accepted != nil {
			counterparts = append(counterparts, *accepted)
		}
		syns, err := repo.Synonyms(ctx, taxon.RankSpecies, spID)
		if err != nil {
			return nil, err
		}
		counterparts = append(counterparts, syns...)

		for _, other := range counterparts {
			otherNames, err := vernacularOf(other)
			if err != nil {
				return nil, err
			}
			if len(otherNames) == 0 {
				continue
			}
			for _, v := range otherNames {
				add(v)
			}
		}
	}
	return out, nil
}

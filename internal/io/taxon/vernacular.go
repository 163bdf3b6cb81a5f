package taxon

import (
	"context"

	"github.com/gnames/botanic/pkg/taxon"
	"github.com/google/uuid"
)

// CreateVernacularName validates and inserts v. Ids are random
// (google/uuid), not content-addressed: unlike Family/Genus/Species/
// Geography, a VernacularName's uniqueness constraint is the (name,
// language, species) triple, not the id itself.
func (r *Repository) CreateVernacularName(ctx context.Context, v *taxon.VernacularName) (*taxon.VernacularName, error) {
	if err := taxon.ValidateVernacularName(v); err != nil {
		return nil, err
	}
	out := *v
	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	err := r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			INSERT INTO vernacular_name (id, name, language, species_id)
			VALUES ($1, $2, $3, $4)`,
			out.ID, out.Name, out.Language, out.SpeciesID)
		return err
	})
	if err != nil {
		return nil, dbError("failed to create vernacular name", err)
	}
	return &out, nil
}

// DeleteVernacularName removes v and, per invariant 5, clears it as the
// owning species' default if it was one.
func (r *Repository) DeleteVernacularName(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if _, err := r.q(ctx).Exec(ctx,
			`DELETE FROM default_vernacular_name WHERE vernacular_name_id = $1`, id); err != nil {
			return err
		}
		tag, err := r.q(ctx).Exec(ctx, `DELETE FROM vernacular_name WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("vernacular_name", id)
		}
		return nil
	})
}

// SetDefaultVernacularName designates vernacularNameID as speciesID's
// default, replacing any previous designation (§3 "at most one default
// per species").
func (r *Repository) SetDefaultVernacularName(ctx context.Context, speciesID, vernacularNameID string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			INSERT INTO default_vernacular_name (species_id, vernacular_name_id)
			VALUES ($1, $2)
			ON CONFLICT (species_id) DO UPDATE SET vernacular_name_id = EXCLUDED.vernacular_name_id`,
			speciesID, vernacularNameID)
		return err
	})
}

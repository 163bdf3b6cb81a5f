package taxon

import (
	"context"

	"github.com/gnames/botanic/pkg/taxon"
	"github.com/gnames/gnuuid"
	"github.com/jackc/pgx/v5"
)

// CreateGeography validates and inserts g, generating a content-addressed
// id from its unique code when g.ID is empty. ApproxArea is written as
// given; internal/io/history recomputes it from Geojson before calling
// this (§4.7 invariant 7), same pattern as Species'
// full_name/full_sci_name.
func (r *Repository) CreateGeography(ctx context.Context, g *taxon.Geography) (*taxon.Geography, error) {
	if err := taxon.ValidateGeography(g); err != nil {
		return nil, err
	}
	out := *g
	if out.ID == "" {
		out.ID = gnuuid.New(out.Code).String()
	}

	err := r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			INSERT INTO geography (id, name, code, level, iso_code, geojson, parent_id, approx_area)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			out.ID, out.Name, out.Code, out.Level, out.IsoCode, out.Geojson, out.ParentID, out.ApproxArea)
		return err
	})
	if err != nil {
		return nil, dbError("failed to create geography", err)
	}
	return &out, nil
}

// UpdateGeography validates patch and overwrites every mutable column,
// including ApproxArea exactly as given. The bare Repository trusts
// whatever ApproxArea the caller supplies; internal/io/history is the
// layer that actually recomputes it from Geojson before calling this
// (§4.7 invariant 7), the same split CreateSpecies/UpdateSpecies use for
// full_name/full_sci_name.
func (r *Repository) UpdateGeography(ctx context.Context, id string, patch *taxon.Geography) (*taxon.Geography, error) {
	if err := taxon.ValidateGeography(patch); err != nil {
		return nil, err
	}
	out := *patch
	out.ID = id

	err := r.runTx(ctx, func(ctx context.Context) error {
		tag, err := r.q(ctx).Exec(ctx, `
			UPDATE geography SET name = $1, code = $2, level = $3, iso_code = $4,
				geojson = $5, parent_id = $6, approx_area = $7
			WHERE id = $8`,
			out.Name, out.Code, out.Level, out.IsoCode, out.Geojson, out.ParentID, out.ApproxArea, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("geography", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGeography loads a geography node by id.
func (r *Repository) GetGeography(ctx context.Context, id string) (*taxon.Geography, error) {
	row := r.q(ctx).QueryRow(ctx, `
		SELECT id, name, code, level, iso_code, geojson, parent_id, approx_area
		FROM geography WHERE id = $1`, id)

	var g taxon.Geography
	if err := row.Scan(&g.ID, &g.Name, &g.Code, &g.Level, &g.IsoCode, &g.Geojson, &g.ParentID, &g.ApproxArea); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errNotFound("geography", id)
		}
		return nil, dbError("failed to load geography", err)
	}
	return &g, nil
}

// AddDistribution records that speciesID occurs in geographyID.
func (r *Repository) AddDistribution(ctx context.Context, speciesID, geographyID string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			INSERT INTO species_distribution (species_id, geography_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			speciesID, geographyID)
		return err
	})
}

// RemoveDistribution removes the speciesID/geographyID distribution edge.
func (r *Repository) RemoveDistribution(ctx context.Context, speciesID, geographyID string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			DELETE FROM species_distribution WHERE species_id = $1 AND geography_id = $2`,
			speciesID, geographyID)
		return err
	})
}

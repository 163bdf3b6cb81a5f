package taxon

import (
	"context"
	"fmt"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/gnames/gnuuid"
	"github.com/jackc/pgx/v5"
)

// CreateGenus validates and inserts g, generating a content-addressed id
// from (family_id, epithet) when g.ID is empty.
func (r *Repository) CreateGenus(ctx context.Context, g *taxon.Genus) (*taxon.Genus, error) {
	if err := taxon.ValidateGenus(g); err != nil {
		return nil, err
	}
	out := *g
	if out.ID == "" {
		out.ID = gnuuid.New(out.FamilyID + "|" + out.Epithet).String()
	}

	err := r.runTx(ctx, func(ctx context.Context) error {
		_, err := r.q(ctx).Exec(ctx, `
			INSERT INTO genus (id, epithet, hybrid, qualifier, author, cites_override,
				family_id, subfamily, tribe, subtribe)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			out.ID, out.Epithet, hybridToNull(out.Hybrid), string(out.Qualifier), out.Author,
			citesToNull(out.CitesOverride), out.FamilyID, out.Subfamily, out.Tribe, out.Subtribe)
		return err
	})
	if err != nil {
		return nil, dbError("failed to create genus", err)
	}
	return &out, nil
}

// UpdateGenus validates patch and overwrites every mutable column of the
// genus identified by id. internal/io/history decorates this call to
// cascade the recomputed full_name/full_sci_name to every owned Species
// (§4.7 "cascade a Genus.update to its Species") since an epithet change
// here changes every child's composed name.
func (r *Repository) UpdateGenus(ctx context.Context, id string, patch *taxon.Genus) (*taxon.Genus, error) {
	if err := taxon.ValidateGenus(patch); err != nil {
		return nil, err
	}
	out := *patch
	out.ID = id

	err := r.runTx(ctx, func(ctx context.Context) error {
		tag, err := r.q(ctx).Exec(ctx, `
			UPDATE genus SET epithet = $1, hybrid = $2, qualifier = $3, author = $4,
				cites_override = $5, family_id = $6, subfamily = $7, tribe = $8, subtribe = $9
			WHERE id = $10`,
			out.Epithet, hybridToNull(out.Hybrid), string(out.Qualifier), out.Author,
			citesToNull(out.CitesOverride), out.FamilyID, out.Subfamily, out.Tribe, out.Subtribe, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("genus", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGenus enforces invariant 6 (refuses while the genus has species)
// then cascades per invariant 5.
func (r *Repository) DeleteGenus(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		var n int
		if err := r.q(ctx).QueryRow(ctx, `SELECT count(*) FROM species WHERE genus_id = $1`, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return inUseError(errcode.InUseGenusHasSpeciesError,
				fmt.Sprintf("genus %s has %d species and cannot be deleted (invariant 6)", id, n))
		}

		for _, stmt := range []string{
			`DELETE FROM genus_note WHERE genus_id = $1`,
			`DELETE FROM genus_picture WHERE genus_id = $1`,
			`DELETE FROM genus_synonym WHERE accepted_id = $1 OR synonym_id = $1`,
		} {
			if _, err := r.q(ctx).Exec(ctx, stmt, id); err != nil {
				return err
			}
		}
		tag, err := r.q(ctx).Exec(ctx, `DELETE FROM genus WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("genus", id)
		}
		return nil
	})
}

// GetGenus loads a genus by id. It does not eagerly load Family; callers
// needing it should call GetFamily separately.
func (r *Repository) GetGenus(ctx context.Context, id string) (*taxon.Genus, error) {
	row := r.q(ctx).QueryRow(ctx, `
		SELECT id, epithet, hybrid, qualifier, author, cites_override,
			family_id, subfamily, tribe, subtribe
		FROM genus WHERE id = $1`, id)

	var g taxon.Genus
	var hybrid, qualifier string
	var citesOverride, hybridNull *string
	if err := row.Scan(&g.ID, &g.Epithet, &hybridNull, &qualifier, &g.Author,
		&citesOverride, &g.FamilyID, &g.Subfamily, &g.Tribe, &g.Subtribe); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errNotFound("genus", id)
		}
		return nil, dbError("failed to load genus", err)
	}
	if hybridNull != nil {
		hybrid = *hybridNull
	}
	g.Hybrid = taxon.HybridMarker(hybrid)
	g.Qualifier = taxon.Qualifier(qualifier)
	g.CitesOverride = citesFromNull(citesOverride)
	return &g, nil
}

func hybridToNull(h taxon.HybridMarker) *string {
	if h == taxon.HybridNone {
		return nil
	}
	s := string(h)
	return &s
}

package history

import (
	"context"

	"github.com/gnames/botanic/internal/io/dbtx"
	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/history"
	"github.com/gnames/botanic/pkg/nameformat"
	"github.com/gnames/botanic/pkg/taxon"
)

// Repository decorates a bare taxon.Repository with C7's event-bus
// behavior. It implements taxon.Repository itself so callers (e.g.
// pkg/search.SynonymStrategy, cmd/botanic) can depend on the interface
// without knowing whether history wiring is present.
type Repository struct {
	Inner  taxon.Repository
	DB     database.Operator
	Writer *Writer
}

// NewRepository returns a Repository that records history for every
// mutation made through inner.
func NewRepository(inner taxon.Repository, db database.Operator) *Repository {
	return &Repository{Inner: inner, DB: db, Writer: NewWriter()}
}

var _ taxon.Repository = (*Repository)(nil)

// runTx opens a transaction and puts it on ctx via dbtx, so both the
// Inner repository's writes (internal/io/taxon checks dbtx.FromContext
// before opening its own) and this decorator's history insert share one
// commit.
func (r *Repository) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.DB.Pool().Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(dbtx.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func txExecer(ctx context.Context) execer {
	tx, _ := dbtx.FromContext(ctx)
	return tx
}

// ---- Family ----

func (r *Repository) CreateFamily(ctx context.Context, f *taxon.Family) (*taxon.Family, error) {
	var out *taxon.Family
	err := r.runTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.Inner.CreateFamily(ctx, f)
		if err != nil {
			return err
		}
		rec := history.NewRecord("family", out.ID, history.OpInsert, toSchemaFamily(nil), toSchemaFamily(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

func (r *Repository) UpdateFamily(ctx context.Context, id string, patch *taxon.Family) (*taxon.Family, error) {
	var out *taxon.Family
	err := r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetFamily(ctx, id)
		if err != nil {
			return err
		}
		out, err = r.Inner.UpdateFamily(ctx, id, patch)
		if err != nil {
			return err
		}
		rec := history.NewRecord("family", id, history.OpUpdate, toSchemaFamily(before), toSchemaFamily(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

func (r *Repository) DeleteFamily(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetFamily(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Inner.DeleteFamily(ctx, id); err != nil {
			return err
		}
		rec := history.NewRecord("family", id, history.OpDelete, toSchemaFamily(before), toSchemaFamily(nil))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

func (r *Repository) GetFamily(ctx context.Context, id string) (*taxon.Family, error) {
	return r.Inner.GetFamily(ctx, id)
}

// ---- Genus ----

func (r *Repository) CreateGenus(ctx context.Context, g *taxon.Genus) (*taxon.Genus, error) {
	var out *taxon.Genus
	err := r.runTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.Inner.CreateGenus(ctx, g)
		if err != nil {
			return err
		}
		rec := history.NewRecord("genus", out.ID, history.OpInsert, toSchemaGenus(nil), toSchemaGenus(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

// UpdateGenus updates g then cascades the recomputation of
// full_name/full_sci_name to every Species it owns (§4.7 "cascade a
// Genus.update to its Species"), since those names embed the genus
// epithet/hybrid/qualifier/author.
func (r *Repository) UpdateGenus(ctx context.Context, id string, patch *taxon.Genus) (*taxon.Genus, error) {
	var out *taxon.Genus
	err := r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetGenus(ctx, id)
		if err != nil {
			return err
		}
		out, err = r.Inner.UpdateGenus(ctx, id, patch)
		if err != nil {
			return err
		}
		rec := history.NewRecord("genus", id, history.OpUpdate, toSchemaGenus(before), toSchemaGenus(out))
		if err := r.Writer.Write(ctx, txExecer(ctx), rec); err != nil {
			return err
		}
		return r.cascadeGenusSpecies(ctx, out)
	})
	return out, err
}

func (r *Repository) cascadeGenusSpecies(ctx context.Context, genus *taxon.Genus) error {
	rows, err := r.DB.Pool().Query(ctx, `SELECT id FROM species WHERE genus_id = $1`, genus.ID)
	if err != nil {
		return err
	}
	var speciesIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		speciesIDs = append(speciesIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, id := range speciesIDs {
		sp, err := r.Inner.GetSpecies(ctx, id)
		if err != nil {
			return err
		}
		out, err := r.recomputeAndUpdateSpecies(ctx, id, sp, genus)
		if err != nil {
			return err
		}
		rec := history.NewRecord("species", id, history.OpUpdate, toSchemaSpecies(sp), toSchemaSpecies(out))
		if err := r.Writer.Write(ctx, txExecer(ctx), rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) DeleteGenus(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetGenus(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Inner.DeleteGenus(ctx, id); err != nil {
			return err
		}
		rec := history.NewRecord("genus", id, history.OpDelete, toSchemaGenus(before), toSchemaGenus(nil))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

func (r *Repository) GetGenus(ctx context.Context, id string) (*taxon.Genus, error) {
	return r.Inner.GetGenus(ctx, id)
}

// ---- Species ----

// CreateSpecies recomputes full_name/full_sci_name from C1 before
// persisting (§4.7 "On Species.insert ... recompute full_name and
// full_sci_name from C1").
func (r *Repository) CreateSpecies(ctx context.Context, sp *taxon.Species) (*taxon.Species, error) {
	var out *taxon.Species
	err := r.runTx(ctx, func(ctx context.Context) error {
		genus, err := r.Inner.GetGenus(ctx, sp.GenusID)
		if err != nil {
			return err
		}
		withNames := *sp
		withNames.FullName, withNames.FullSciName = deriveNames(&withNames, genus)

		out, err = r.Inner.CreateSpecies(ctx, &withNames)
		if err != nil {
			return err
		}
		rec := history.NewRecord("species", out.ID, history.OpInsert, toSchemaSpecies(nil), toSchemaSpecies(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

// UpdateSpecies recomputes full_name/full_sci_name from C1 before
// persisting (§4.7 "On Species.update, recompute full_name and
// full_sci_name from C1").
func (r *Repository) UpdateSpecies(ctx context.Context, id string, patch *taxon.Species) (*taxon.Species, error) {
	var out *taxon.Species
	err := r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetSpecies(ctx, id)
		if err != nil {
			return err
		}
		genusID := patch.GenusID
		if genusID == "" {
			genusID = before.GenusID
		}
		genus, err := r.Inner.GetGenus(ctx, genusID)
		if err != nil {
			return err
		}
		out, err = r.recomputeAndUpdateSpecies(ctx, id, patch, genus)
		if err != nil {
			return err
		}
		rec := history.NewRecord("species", id, history.OpUpdate, toSchemaSpecies(before), toSchemaSpecies(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

// recomputeAndUpdateSpecies derives sp's names against genus and writes
// the update through Inner, without itself recording history (callers
// record history once, with whichever before/after pair matches their
// own operation — a direct UpdateSpecies call, or a cascaded genus
// rename touching several species at once).
func (r *Repository) recomputeAndUpdateSpecies(ctx context.Context, id string, sp *taxon.Species, genus *taxon.Genus) (*taxon.Species, error) {
	withNames := *sp
	withNames.ID = id
	withNames.FullName, withNames.FullSciName = deriveNames(&withNames, genus)
	return r.Inner.UpdateSpecies(ctx, id, &withNames)
}

func deriveNames(sp *taxon.Species, genus *taxon.Genus) (fullName, fullSciName string) {
	in := nameformat.SpeciesInput{
		Genus: nameformat.GenusInput{
			Epithet:   genus.Epithet,
			Hybrid:    string(genus.Hybrid),
			Qualifier: string(genus.Qualifier),
			Author:    genus.Author,
		},
		Epithet:         sp.Epithet,
		Hybrid:          string(sp.Hybrid),
		SpAuthor:        sp.SpAuthor,
		SpQual:          string(sp.SpQual),
		Grex:            sp.Grex,
		CvGroup:         sp.CvGroup,
		CultivarEpithet: sp.CultivarEpithet,
		TradeName:       sp.TradeName,
		TrademarkSymbol: string(sp.TrademarkSymbol),
		PBRProtected:    sp.PBRProtected,
	}
	for i, slot := range sp.Infraspecific {
		in.Infraspecific[i] = nameformat.InfraspecificSlot{
			Rank: string(slot.Rank), Epithet: slot.Epithet, Author: slot.Author,
		}
	}
	return history.DeriveSpeciesNames(in)
}

func (r *Repository) DeleteSpecies(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetSpecies(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Inner.DeleteSpecies(ctx, id); err != nil {
			return err
		}
		rec := history.NewRecord("species", id, history.OpDelete, toSchemaSpecies(before), toSchemaSpecies(nil))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

func (r *Repository) GetSpecies(ctx context.Context, id string) (*taxon.Species, error) {
	return r.Inner.GetSpecies(ctx, id)
}

// ---- VernacularName ----

func (r *Repository) CreateVernacularName(ctx context.Context, v *taxon.VernacularName) (*taxon.VernacularName, error) {
	var out *taxon.VernacularName
	err := r.runTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.Inner.CreateVernacularName(ctx, v)
		if err != nil {
			return err
		}
		rec := history.NewRecord("vernacular_name", out.ID, history.OpInsert, toSchemaVernacularName(nil), toSchemaVernacularName(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

func (r *Repository) DeleteVernacularName(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if err := r.Inner.DeleteVernacularName(ctx, id); err != nil {
			return err
		}
		rec := &history.Record{Table: "vernacular_name", RowID: id, Operation: history.OpDelete}
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

func (r *Repository) SetDefaultVernacularName(ctx context.Context, speciesID, vernacularNameID string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if err := r.Inner.SetDefaultVernacularName(ctx, speciesID, vernacularNameID); err != nil {
			return err
		}
		rec := &history.Record{
			Table: "default_vernacular_name", RowID: speciesID, Operation: history.OpUpdate,
			Diffs: []history.FieldDiff{{Column: "vernacular_name_id", After: vernacularNameID}},
		}
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

// ---- Geography ----

func (r *Repository) CreateGeography(ctx context.Context, g *taxon.Geography) (*taxon.Geography, error) {
	var out *taxon.Geography
	err := r.runTx(ctx, func(ctx context.Context) error {
		withArea := *g
		area, err := areaFromGeojson(withArea.Geojson)
		if err != nil {
			return err
		}
		withArea.ApproxArea = area

		out, err = r.Inner.CreateGeography(ctx, &withArea)
		if err != nil {
			return err
		}
		rec := history.NewRecord("geography", out.ID, history.OpInsert, toSchemaGeography(nil), toSchemaGeography(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

func (r *Repository) UpdateGeography(ctx context.Context, id string, patch *taxon.Geography) (*taxon.Geography, error) {
	var out *taxon.Geography
	err := r.runTx(ctx, func(ctx context.Context) error {
		before, err := r.Inner.GetGeography(ctx, id)
		if err != nil {
			return err
		}
		withArea := *patch
		area, err := areaFromGeojson(withArea.Geojson)
		if err != nil {
			return err
		}
		withArea.ApproxArea = area

		out, err = r.Inner.UpdateGeography(ctx, id, &withArea)
		if err != nil {
			return err
		}
		rec := history.NewRecord("geography", id, history.OpUpdate, toSchemaGeography(before), toSchemaGeography(out))
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
	return out, err
}

func areaFromGeojson(geojson *string) (float64, error) {
	if geojson == nil || *geojson == "" {
		return 0, nil
	}
	return history.DeriveGeographyArea(*geojson)
}

func (r *Repository) GetGeography(ctx context.Context, id string) (*taxon.Geography, error) {
	return r.Inner.GetGeography(ctx, id)
}

// ---- SpeciesDistribution ----

func (r *Repository) AddDistribution(ctx context.Context, speciesID, geographyID string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if err := r.Inner.AddDistribution(ctx, speciesID, geographyID); err != nil {
			return err
		}
		rec := &history.Record{
			Table: "species_distribution", RowID: speciesID, Operation: history.OpInsert,
			Diffs: []history.FieldDiff{{Column: "geography_id", After: geographyID}},
		}
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

func (r *Repository) RemoveDistribution(ctx context.Context, speciesID, geographyID string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if err := r.Inner.RemoveDistribution(ctx, speciesID, geographyID); err != nil {
			return err
		}
		rec := &history.Record{
			Table: "species_distribution", RowID: speciesID, Operation: history.OpDelete,
			Diffs: []history.FieldDiff{{Column: "geography_id", Before: geographyID}},
		}
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

// ---- Synonym edges ----

func (r *Repository) SetAccepted(ctx context.Context, rnk taxon.TaxonRank, taxonID string, acceptedID *string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if err := r.Inner.SetAccepted(ctx, rnk, taxonID, acceptedID); err != nil {
			return err
		}
		diffs := []history.FieldDiff{{Column: "accepted_id", After: acceptedID}}
		rec := &history.Record{Table: string(rnk) + "_synonym", RowID: taxonID, Operation: history.OpUpdate, Diffs: diffs}
		return r.Writer.Write(ctx, txExecer(ctx), rec)
	})
}

func (r *Repository) Synonyms(ctx context.Context, rnk taxon.TaxonRank, acceptedID string) ([]string, error) {
	return r.Inner.Synonyms(ctx, rnk, acceptedID)
}

func (r *Repository) Accepted(ctx context.Context, rnk taxon.TaxonRank, taxonID string) (*string, error) {
	return r.Inner.Accepted(ctx, rnk, taxonID)
}

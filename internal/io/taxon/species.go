package taxon

import (
	"context"
	"fmt"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/gnames/gnuuid"
	"github.com/jackc/pgx/v5"
)

// CreateSpecies validates and inserts sp, generating a content-addressed
// id from its identity fields (genus, epithet, author, cultivar epithet)
// when sp.ID is empty. An empty full_name/full_sci_name is replaced by
// the id, so a bare Repository used standalone (e.g. in tests) still
// produces a row satisfying the NOT NULL and uniqueness constraints;
// internal/io/history derives both names from C1 before calling this
// (§4.7).
func (r *Repository) CreateSpecies(ctx context.Context, sp *taxon.Species) (*taxon.Species, error) {
	if err := taxon.ValidateSpecies(sp); err != nil {
		return nil, err
	}
	out := *sp
	if out.ID == "" {
		out.ID = gnuuid.New(fmt.Sprintf("%s|%s|%s|%s",
			out.GenusID, out.Epithet, out.SpAuthor, out.CultivarEpithet)).String()
	}
	if out.FullName == "" {
		out.FullName = out.ID
	}
	if out.FullSciName == "" {
		out.FullSciName = out.ID
	}

	err := r.runTx(ctx, func(ctx context.Context) error {
		cols, args := speciesColumns(&out)
		placeholders := make([]string, len(args))
		for i := range args {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		sql := fmt.Sprintf("INSERT INTO species (%s) VALUES (%s)",
			joinCols(cols), joinCols(placeholders))
		_, err := r.q(ctx).Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, dbError("failed to create species", err)
	}
	return &out, nil
}

// UpdateSpecies validates patch and overwrites every mutable column of
// the species identified by id. The bare Repository trusts whatever
// FullName/FullSciName the caller supplies (falling back to the stable
// id when empty, to avoid colliding on the full_sci_name uniqueness
// constraint); internal/io/history is the layer that actually recomputes
// them from C1 before calling this (§4.7).
func (r *Repository) UpdateSpecies(ctx context.Context, id string, patch *taxon.Species) (*taxon.Species, error) {
	if err := taxon.ValidateSpecies(patch); err != nil {
		return nil, err
	}
	out := *patch
	out.ID = id
	if out.FullName == "" {
		out.FullName = out.ID
	}
	if out.FullSciName == "" {
		out.FullSciName = out.ID
	}

	err := r.runTx(ctx, func(ctx context.Context) error {
		cols, args := speciesColumns(&out)
		// cols[0]/args[0] is "id"/out.ID; the WHERE clause already pins the
		// row, so only the remaining columns need a SET clause.
		cols, args = cols[1:], args[1:]
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
		}
		args = append(args, id)
		sql := fmt.Sprintf("UPDATE species SET %s WHERE id = $%d",
			joinCols(sets), len(args))
		tag, err := r.q(ctx).Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("species", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSpecies enforces invariant 6 via Accessions (external subsystem,
// §6 — the core never persists accession data itself; r.AccessionCheck,
// when set, asks the external system) then cascades per invariant 5.
func (r *Repository) DeleteSpecies(ctx context.Context, id string) error {
	return r.runTx(ctx, func(ctx context.Context) error {
		if r.AccessionCheck != nil {
			inUse, err := r.AccessionCheck(ctx, id)
			if err != nil {
				return err
			}
			if inUse {
				return inUseError(errcode.InUseSpeciesHasAccessionsError,
					fmt.Sprintf("species %s has accessions and cannot be deleted (invariant 6)", id))
			}
		}

		for _, stmt := range []string{
			`DELETE FROM species_note WHERE species_id = $1`,
			`DELETE FROM species_picture WHERE species_id = $1`,
			`DELETE FROM species_synonym WHERE accepted_id = $1 OR synonym_id = $1`,
			`DELETE FROM species_distribution WHERE species_id = $1`,
			`DELETE FROM default_vernacular_name WHERE species_id = $1`,
			`DELETE FROM vernacular_name WHERE species_id = $1`,
		} {
			if _, err := r.q(ctx).Exec(ctx, stmt, id); err != nil {
				return err
			}
		}
		tag, err := r.q(ctx).Exec(ctx, `DELETE FROM species WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errNotFound("species", id)
		}
		return nil
	})
}

// GetSpecies loads a species by id. It does not eagerly load Genus or
// Accessions; callers needing them load them separately.
func (r *Repository) GetSpecies(ctx context.Context, id string) (*taxon.Species, error) {
	row := r.q(ctx).QueryRow(ctx, `
		SELECT id, epithet, sp_author, hybrid, sp_qual,
			infrasp1_rank, infrasp1, infrasp1_author,
			infrasp2_rank, infrasp2, infrasp2_author,
			infrasp3_rank, infrasp3, infrasp3_author,
			infrasp4_rank, infrasp4, infrasp4_author,
			cultivar_epithet, cv_group, trade_name, trademark_symbol, pbr_protected, grex,
			subgenus, section, subsection, series, subseries,
			cites_override, red_list, full_name, full_sci_name, genus_id,
			habit_id, flower_color_id
		FROM species WHERE id = $1`, id)

	var sp taxon.Species
	var hybrid, spQual, trademark *string
	var citesOverride, redList *string
	slots := make([]*string, 12)

	if err := row.Scan(&sp.ID, &sp.Epithet, &sp.SpAuthor, &hybrid, &spQual,
		&slots[0], &slots[1], &slots[2],
		&slots[3], &slots[4], &slots[5],
		&slots[6], &slots[7], &slots[8],
		&slots[9], &slots[10], &slots[11],
		&sp.CultivarEpithet, &sp.CvGroup, &sp.TradeName, &trademark, &sp.PBRProtected, &sp.Grex,
		&sp.Subgenus, &sp.Section, &sp.Subsection, &sp.Series, &sp.Subseries,
		&citesOverride, &redList, &sp.FullName, &sp.FullSciName, &sp.GenusID,
		&sp.HabitID, &sp.FlowerColorID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errNotFound("species", id)
		}
		return nil, dbError("failed to load species", err)
	}

	sp.Hybrid = taxon.HybridMarker(derefStr(hybrid))
	sp.SpQual = taxon.SpQualifier(derefStr(spQual))
	sp.TrademarkSymbol = taxon.TrademarkSymbol(derefStr(trademark))
	sp.CitesOverride = citesFromNull(citesOverride)
	sp.RedList = taxon.RedListCategory(derefStr(redList))
	for i := 0; i < 4; i++ {
		sp.Infraspecific[i] = taxon.InfraspecificSlot{
			Rank:    taxon.InfraspecificRank(derefStr(slots[i*3])),
			Epithet: derefStr(slots[i*3+1]),
			Author:  derefStr(slots[i*3+2]),
		}
	}
	return &sp, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func joinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

// speciesColumns returns the species table's column names and the
// matching values from sp, in the same order, for both insert and
// update statements.
func speciesColumns(sp *taxon.Species) ([]string, []any) {
	cols := []string{
		"id", "epithet", "sp_author", "hybrid", "sp_qual",
		"infrasp1_rank", "infrasp1", "infrasp1_author",
		"infrasp2_rank", "infrasp2", "infrasp2_author",
		"infrasp3_rank", "infrasp3", "infrasp3_author",
		"infrasp4_rank", "infrasp4", "infrasp4_author",
		"cultivar_epithet", "cv_group", "trade_name", "trademark_symbol", "pbr_protected", "grex",
		"subgenus", "section", "subsection", "series", "subseries",
		"cites_override", "red_list", "full_name", "full_sci_name", "genus_id",
		"habit_id", "flower_color_id",
	}
	args := []any{
		sp.ID, sp.Epithet, sp.SpAuthor, nullIfEmpty(string(sp.Hybrid)), nullIfEmpty(string(sp.SpQual)),
	}
	for _, slot := range sp.Infraspecific {
		args = append(args,
			nullIfEmpty(string(slot.Rank)), nullIfEmpty(slot.Epithet), nullIfEmpty(slot.Author))
	}
	args = append(args,
		sp.CultivarEpithet, sp.CvGroup, sp.TradeName, nullIfEmpty(string(sp.TrademarkSymbol)),
		sp.PBRProtected, sp.Grex,
		sp.Subgenus, sp.Section, sp.Subsection, sp.Series, sp.Subseries,
		citesToNull(sp.CitesOverride), nullIfEmpty(string(sp.RedList)), sp.FullName, sp.FullSciName, sp.GenusID,
		sp.HabitID, sp.FlowerColorID,
	)
	return cols, args
}

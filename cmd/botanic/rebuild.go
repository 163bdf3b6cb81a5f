package main

import (
	"context"
	"fmt"

	iodatabase "github.com/gnames/botanic/internal/io/database"
	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/history"
	"github.com/gnames/botanic/pkg/nameformat"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func getRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recomputes derived columns after bulk edits",
		Long: `Recomputes Species.full_name/full_sci_name and Geography.approx_area
for every row, the same derivation the Event Bus applies incrementally
on each insert/update (§4.7), useful after a bulk import or a direct
database edit that bypassed the application. It writes no history
records.

Examples:
  botanic rebuild`,
		RunE: runRebuild,
	}
	return cmd
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()

	var op database.Operator = iodatabase.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	pool := op.Pool()

	speciesIDs, err := collectIDs(ctx, pool, "SELECT id FROM species")
	if err != nil {
		return fmt.Errorf("failed to list species: %w", err)
	}
	geographyIDs, err := collectIDs(ctx, pool, "SELECT id FROM geography")
	if err != nil {
		return fmt.Errorf("failed to list geography: %w", err)
	}

	fmt.Printf("Rebuilding %s species and %s geography entries...\n",
		humanize.Comma(int64(len(speciesIDs))), humanize.Comma(int64(len(geographyIDs))))

	speciesBar := pb.Full.Start(len(speciesIDs))
	speciesBar.Set("prefix", "Species: ")
	speciesBar.Set(pb.CleanOnFinish, true)
	geoBar := pb.Full.Start(len(geographyIDs))
	geoBar.Set("prefix", "Geography: ")
	geoBar.Set(pb.CleanOnFinish, true)

	rebuildSpecies := func(ctx context.Context, ids []string) error {
		return rebuildSpeciesChunk(ctx, pool, ids)
	}
	rebuildGeography := func(ctx context.Context, ids []string) error {
		return rebuildGeographyChunk(ctx, pool, ids)
	}

	err = history.RebuildAll(ctx, speciesIDs, geographyIDs, rebuildSpecies, rebuildGeography,
		func(done, total int) { speciesBar.SetCurrent(int64(done)) },
		func(done, total int) { geoBar.SetCurrent(int64(done)) },
	)
	speciesBar.Finish()
	geoBar.Finish()
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Println("✓ Rebuild complete")
	return nil
}

func collectIDs(ctx context.Context, pool *pgxpool.Pool, sql string) ([]string, error) {
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func rebuildSpeciesChunk(ctx context.Context, pool *pgxpool.Pool, ids []string) error {
	rows, err := pool.Query(ctx, `
		SELECT species.id, species.epithet, species.sp_author, species.hybrid,
		       species.cultivar_epithet, species.trade_name, genus.epithet
		FROM species JOIN genus ON genus.id = species.genus_id
		WHERE species.id = ANY($1)`, ids)
	if err != nil {
		return err
	}

	type row struct {
		id, epithet, spAuthor, hybrid, cultivarEpithet, tradeName, genusEpithet string
	}
	var toUpdate []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.epithet, &r.spAuthor, &r.hybrid,
			&r.cultivarEpithet, &r.tradeName, &r.genusEpithet); err != nil {
			rows.Close()
			return err
		}
		toUpdate = append(toUpdate, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, r := range toUpdate {
		in := nameformat.SpeciesInput{
			Genus:           nameformat.GenusInput{Epithet: r.genusEpithet},
			Epithet:         r.epithet,
			Hybrid:          r.hybrid,
			SpAuthor:        r.spAuthor,
			CultivarEpithet: r.cultivarEpithet,
			TradeName:       r.tradeName,
		}
		fullName, fullSciName := history.DeriveSpeciesNames(in)
		if _, err := tx.Exec(ctx,
			`UPDATE species SET full_name = $1, full_sci_name = $2 WHERE id = $3`,
			fullName, fullSciName, r.id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func rebuildGeographyChunk(ctx context.Context, pool *pgxpool.Pool, ids []string) error {
	rows, err := pool.Query(ctx, `SELECT id, geojson FROM geography WHERE id = ANY($1)`, ids)
	if err != nil {
		return err
	}

	type row struct {
		id      string
		geojson *string // NULL geojson yields an area of 0
	}
	var toUpdate []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.geojson); err != nil {
			rows.Close()
			return err
		}
		toUpdate = append(toUpdate, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, r := range toUpdate {
		var geojson string
		if r.geojson != nil {
			geojson = *r.geojson
		}
		area, err := history.DeriveGeographyArea(geojson)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE geography SET approx_area = $1 WHERE id = $2`, area, r.id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

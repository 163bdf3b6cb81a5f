package history_test

import (
	"context"
	"testing"

	iodatabase "github.com/gnames/botanic/internal/io/database"
	iohistory "github.com/gnames/botanic/internal/io/history"
	iotaxon "github.com/gnames/botanic/internal/io/taxon"
	iotesting "github.com/gnames/botanic/internal/io/testing"
	"github.com/gnames/botanic/pkg/history"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectTestDB(t *testing.T) *iodatabase.PgxOperator {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	op := iodatabase.NewPgxOperator()
	err := op.Connect(context.Background(), iotesting.GetTestDatabaseConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = op.Close() })
	return op
}

func lastHistoryRow(t *testing.T, op *iodatabase.PgxOperator, table, rowID string) (operation string, hasRow bool) {
	t.Helper()
	row := op.Pool().QueryRow(context.Background(), `
		SELECT operation FROM history
		WHERE table_name = $1 AND row_id = $2
		ORDER BY id DESC LIMIT 1`, table, rowID)
	var op2 string
	if err := row.Scan(&op2); err != nil {
		return "", false
	}
	return op2, true
}

func TestRepository_SpeciesCreateDerivesNamesAndWritesHistory(t *testing.T) {
	op := connectTestDB(t)
	bare := iotaxon.NewRepository(op)
	repo := iohistory.NewRepository(bare, op)
	ctx := context.Background()

	fam, err := bare.CreateFamily(ctx, &taxon.Family{Epithet: "Solanaceae"})
	require.NoError(t, err)
	gen, err := bare.CreateGenus(ctx, &taxon.Genus{Epithet: "Solanum", FamilyID: fam.ID, Author: "L."})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = bare.DeleteGenus(context.Background(), gen.ID)
		_ = bare.DeleteFamily(context.Background(), fam.ID)
	})

	sp, err := repo.CreateSpecies(ctx, &taxon.Species{
		Epithet: "lycopersicum", SpAuthor: "L.", GenusID: gen.ID,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bare.DeleteSpecies(context.Background(), sp.ID) })

	assert.Contains(t, sp.FullName, "lycopersicum")
	assert.Contains(t, sp.FullSciName, "L.")
	assert.NotEqual(t, sp.ID, sp.FullName)

	operation, ok := lastHistoryRow(t, op, "species", sp.ID)
	require.True(t, ok, "expected a history row for the created species")
	assert.Equal(t, string(history.OpInsert), operation)
}

func TestRepository_GenusUpdateCascadesSpeciesNames(t *testing.T) {
	op := connectTestDB(t)
	bare := iotaxon.NewRepository(op)
	repo := iohistory.NewRepository(bare, op)
	ctx := context.Background()

	fam, err := bare.CreateFamily(ctx, &taxon.Family{Epithet: "Malvaceae"})
	require.NoError(t, err)
	gen, err := repo.CreateGenus(ctx, &taxon.Genus{Epithet: "Hibiscus", FamilyID: fam.ID})
	require.NoError(t, err)
	sp, err := repo.CreateSpecies(ctx, &taxon.Species{Epithet: "rosa-sinensis", GenusID: gen.ID})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = bare.DeleteSpecies(context.Background(), sp.ID)
		_ = bare.DeleteGenus(context.Background(), gen.ID)
		_ = bare.DeleteFamily(context.Background(), fam.ID)
	})

	_, err = repo.UpdateGenus(ctx, gen.ID, &taxon.Genus{
		Epithet: "Hibiscus", FamilyID: fam.ID, Author: "L.",
	})
	require.NoError(t, err)

	got, err := bare.GetSpecies(ctx, sp.ID)
	require.NoError(t, err)
	assert.Contains(t, got.FullSciName, "L.")

	operation, ok := lastHistoryRow(t, op, "species", sp.ID)
	require.True(t, ok, "expected a cascaded history row for the species")
	assert.Equal(t, string(history.OpUpdate), operation)
}

func TestRepository_GeographyAreaDerivedFromGeojson(t *testing.T) {
	op := connectTestDB(t)
	bare := iotaxon.NewRepository(op)
	repo := iohistory.NewRepository(bare, op)
	ctx := context.Background()

	geojson := `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`
	geo, err := repo.CreateGeography(ctx, &taxon.Geography{
		Name: "Test Region", Code: "TR", Level: 1, Geojson: &geojson,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = op.Pool().Exec(context.Background(), `DELETE FROM geography WHERE id = $1`, geo.ID) })

	assert.Greater(t, geo.ApproxArea, 0.0)

	operation, ok := lastHistoryRow(t, op, "geography", geo.ID)
	require.True(t, ok, "expected a history row for the created geography")
	assert.Equal(t, string(history.OpInsert), operation)
}

package taxon_test

import (
	"context"
	"testing"

	iodatabase "github.com/gnames/botanic/internal/io/database"
	iotaxon "github.com/gnames/botanic/internal/io/taxon"
	iotesting "github.com/gnames/botanic/internal/io/testing"
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

func TestRepository_FamilyGenusSpeciesLifecycle(t *testing.T) {
	op := connectTestDB(t)
	repo := iotaxon.NewRepository(op)
	ctx := context.Background()

	fam, err := repo.CreateFamily(ctx, &taxon.Family{Epithet: "Orchidaceae"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.DeleteFamily(context.Background(), fam.ID) })

	gen, err := repo.CreateGenus(ctx, &taxon.Genus{Epithet: "Maxillaria", FamilyID: fam.ID})
	require.NoError(t, err)

	// invariant 6: family in use, delete refused
	err = repo.DeleteFamily(ctx, fam.ID)
	require.Error(t, err)

	sp, err := repo.CreateSpecies(ctx, &taxon.Species{Epithet: "variabilis", GenusID: gen.ID})
	require.NoError(t, err)

	// invariant 6: genus in use, delete refused
	err = repo.DeleteGenus(ctx, gen.ID)
	require.Error(t, err)

	got, err := repo.GetSpecies(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, "variabilis", got.Epithet)
	assert.Equal(t, gen.ID, got.GenusID)

	require.NoError(t, repo.DeleteSpecies(ctx, sp.ID))
	require.NoError(t, repo.DeleteGenus(ctx, gen.ID))
	require.NoError(t, repo.DeleteFamily(ctx, fam.ID))
}

func TestRepository_SynonymSelfRejected(t *testing.T) {
	op := connectTestDB(t)
	repo := iotaxon.NewRepository(op)
	ctx := context.Background()

	fam, err := repo.CreateFamily(ctx, &taxon.Family{Epithet: "Rubiaceae"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.DeleteFamily(context.Background(), fam.ID) })

	err = repo.SetAccepted(ctx, taxon.RankFamily, fam.ID, &fam.ID)
	assert.ErrorIs(t, err, taxon.ErrSynonymSelf)
}

func TestRepository_SynonymCycleRejected(t *testing.T) {
	op := connectTestDB(t)
	repo := iotaxon.NewRepository(op)
	ctx := context.Background()

	a, err := repo.CreateFamily(ctx, &taxon.Family{Epithet: "Acanthaceae"})
	require.NoError(t, err)
	b, err := repo.CreateFamily(ctx, &taxon.Family{Epithet: "Bignoniaceae"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.SetAccepted(context.Background(), taxon.RankFamily, a.ID, nil)
		_ = repo.SetAccepted(context.Background(), taxon.RankFamily, b.ID, nil)
		_ = repo.DeleteFamily(context.Background(), a.ID)
		_ = repo.DeleteFamily(context.Background(), b.ID)
	})

	// a is a synonym of b.
	require.NoError(t, repo.SetAccepted(ctx, taxon.RankFamily, a.ID, &b.ID))

	// assigning b as a synonym of a would close a cycle.
	err = repo.SetAccepted(ctx, taxon.RankFamily, b.ID, &a.ID)
	require.Error(t, err)

	accepted, err := repo.Accepted(ctx, taxon.RankFamily, a.ID)
	require.NoError(t, err)
	require.NotNil(t, accepted)
	assert.Equal(t, b.ID, *accepted)

	syns, err := repo.Synonyms(ctx, taxon.RankFamily, b.ID)
	require.NoError(t, err)
	assert.Contains(t, syns, a.ID)
}

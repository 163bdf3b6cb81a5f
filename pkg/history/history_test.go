package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/botanic/pkg/history"
	"github.com/gnames/botanic/pkg/nameformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	ID      string `db:"id"`
	Epithet string `db:"epithet"`
	Ignored string // no db tag: excluded from diffing
}

func TestDiffFields_OnlyReportsChangedColumns(t *testing.T) {
	before := fakeRow{ID: "1", Epithet: "alba", Ignored: "x"}
	after := fakeRow{ID: "1", Epithet: "rubra", Ignored: "y"}

	diffs := history.DiffFields(before, after)
	require.Len(t, diffs, 1)
	assert.Equal(t, "epithet", diffs[0].Column)
	assert.Equal(t, "alba", diffs[0].Before)
	assert.Equal(t, "rubra", diffs[0].After)
}

func TestDiffFields_NoChangesIsEmpty(t *testing.T) {
	row := fakeRow{ID: "1", Epithet: "alba"}
	assert.Empty(t, history.DiffFields(row, row))
}

func TestNewRecord_UpdateSkipsWhenUnchanged(t *testing.T) {
	row := fakeRow{ID: "1", Epithet: "alba"}
	rec := history.NewRecord("species", "1", history.OpUpdate, row, row)
	assert.Nil(t, rec)
}

func TestNewRecord_InsertRecordsFullRowAsAfter(t *testing.T) {
	row := fakeRow{ID: "1", Epithet: "alba"}
	rec := history.NewRecord("species", "1", history.OpInsert, nil, row)
	require.NotNil(t, rec)
	assert.Equal(t, history.OpInsert, rec.Operation)
	found := false
	for _, d := range rec.Diffs {
		if d.Column == "epithet" {
			found = true
			assert.Nil(t, d.Before)
			assert.Equal(t, "alba", d.After)
		}
	}
	assert.True(t, found)
}

func TestNewRecord_DeleteRecordsFullRowAsBefore(t *testing.T) {
	row := fakeRow{ID: "1", Epithet: "alba"}
	rec := history.NewRecord("species", "1", history.OpDelete, row, nil)
	require.NotNil(t, rec)
	assert.Equal(t, history.OpDelete, rec.Operation)
	for _, d := range rec.Diffs {
		if d.Column == "epithet" {
			assert.Equal(t, "alba", d.Before)
			assert.Nil(t, d.After)
		}
	}
}

func TestEncodeDecodeDiffs_RoundTrips(t *testing.T) {
	diffs := []history.FieldDiff{{Column: "epithet", Before: "alba", After: "rubra"}}
	b, err := history.EncodeDiffs(diffs)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	got, err := history.DecodeDiffs(b)
	require.NoError(t, err)
	assert.Equal(t, diffs, got)
}

func TestChunkSize_RoughlyFivePercent(t *testing.T) {
	assert.Equal(t, 5, history.ChunkSize(100))
	assert.Equal(t, 1, history.ChunkSize(3))
	assert.Equal(t, 0, history.ChunkSize(0))
}

func TestRebuildChunked_VisitsEveryIDInChunks(t *testing.T) {
	ids := make([]string, 23)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	var seen []string
	var progressCalls int
	err := history.RebuildChunked(context.Background(), ids, func(_ context.Context, chunk []string) error {
		seen = append(seen, chunk...)
		return nil
	}, func(done, total int) {
		progressCalls++
		assert.LessOrEqual(t, done, total)
	})
	require.NoError(t, err)
	assert.Equal(t, ids, seen)
	assert.Greater(t, progressCalls, 0)
}

func TestRebuildChunked_StopsAtCancellationBetweenChunks(t *testing.T) {
	ids := make([]string, 40)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := history.RebuildChunked(ctx, ids, func(_ context.Context, chunk []string) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestRebuildChunked_PropagatesChunkError(t *testing.T) {
	boom := errors.New("boom")
	err := history.RebuildChunked(context.Background(), []string{"a", "b"}, func(_ context.Context, _ []string) error {
		return boom
	}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestRebuildAll_RunsSpeciesThenGeography(t *testing.T) {
	var order []string
	err := history.RebuildAll(
		context.Background(),
		[]string{"sp-1"}, []string{"geo-1"},
		func(_ context.Context, _ []string) error { order = append(order, "species"); return nil },
		func(_ context.Context, _ []string) error { order = append(order, "geo"); return nil },
		nil, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"species", "geo"}, order)
}

func TestRebuildAll_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	err := history.RebuildAll(
		context.Background(),
		[]string{"sp-1"}, nil,
		func(_ context.Context, _ []string) error { return boom },
		func(_ context.Context, _ []string) error { return nil },
		nil, nil,
	)
	assert.ErrorIs(t, err, boom)
}

func TestDeriveSpeciesNames_BuildsPlainAndScientificForms(t *testing.T) {
	in := nameformat.SpeciesInput{
		Genus:    nameformat.GenusInput{Epithet: "Ixora"},
		Epithet:  "coccinea",
		SpAuthor: "L.",
	}
	plain, sci := history.DeriveSpeciesNames(in)
	assert.Equal(t, "Ixora coccinea", plain)
	assert.Contains(t, sci, "L.")
}

func TestDeriveGeographyArea_EmptyGeojsonIsZero(t *testing.T) {
	area, err := history.DeriveGeographyArea("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, area)
}

package plan_test

import (
	"context"
	"testing"
	"time"

	"github.com/gnames/botanic/pkg/plan"
	"github.com/gnames/botanic/pkg/query"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *plan.Plan {
	t.Helper()
	q, err := query.ParseMapperQuery(src)
	require.NoError(t, err)
	reg := plan.NewBotanicRegistry()
	c := plan.NewCompiler(reg, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	p, err := c.Compile(q)
	require.NoError(t, err)
	return p
}

func TestCompile_S1_NoneAndComparison(t *testing.T) {
	p := compile(t, `plant where (quantity > 1 or geojson = None) and id > 3`)
	assert.Equal(t, "plant", p.RootTable)
	assert.False(t, p.NeedsGroupBy)
	assert.Contains(t, p.Where, "IS NULL")
	assert.Contains(t, p.Where, " OR ")
	assert.Contains(t, p.Where, " AND ")
	assert.Len(t, p.Args, 2) // the two integer literals
}

func TestCompile_S2_AggregateGoesToHaving(t *testing.T) {
	p := compile(t, `genus where count(species.id) == 2`)
	assert.Equal(t, "genus", p.RootTable)
	assert.True(t, p.NeedsGroupBy)
	assert.Empty(t, p.Where)
	assert.Contains(t, p.Having, "COUNT(")
	require.Len(t, p.Joins, 1)
	assert.Equal(t, "species", p.Joins[0].Table)
}

func TestCompile_FilterBracketScopesJoinCondition(t *testing.T) {
	p := compile(t, `species where genus[epithet = Maxillaria].id != None`)
	require.Len(t, p.Joins, 1)
	assert.Contains(t, p.Joins[0].On, "epithet")
	assert.Contains(t, p.Where, "IS NOT NULL")
}

func TestCompile_S4_CorrelatedSubquery(t *testing.T) {
	p := compile(t, `accession where quantity_recvd = (sum(plant.quantity) correlate)`)
	assert.Contains(t, p.Where, "SELECT SUM(")
	assert.Contains(t, p.Where, "plant_")
	assert.Contains(t, p.Where, "accession_id")
	// the correlated subquery's own join must not leak into the outer plan
	assert.Empty(t, p.Joins)
}

func TestCompile_IndependentSubqueryWithOwnWhere(t *testing.T) {
	// spec.md S3 shape: a non-correlated subquery restricted by its own WHERE.
	p := compile(t, `species where genus.epithet = Maxillaria and _last_updated = (max(species._last_updated) where genus.epithet = Maxillaria)`)
	assert.Contains(t, p.Where, "SELECT MAX(")
	assert.Contains(t, p.Where, "JOIN genus")
	// the outer query's own genus join remains on the outer plan
	require.Len(t, p.Joins, 1)
	assert.Equal(t, "genus", p.Joins[0].Table)
}

func TestCompile_InNotInValueList(t *testing.T) {
	p := compile(t, `species where genus.epithet not in (Ixora, Maxillaria)`)
	assert.Contains(t, p.Where, "NOT IN")
}

func TestCompile_BetweenDates(t *testing.T) {
	p := compile(t, `accession where date_recvd between 2024-01-01 and 2024-01-31`)
	assert.Contains(t, p.Where, ">=")
	assert.Contains(t, p.Where, "<")
	require.Len(t, p.Args, 2)
	lo, ok := p.Args[0].(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2024, lo.Year())
}

func TestCompile_ContainsWrapsWildcards(t *testing.T) {
	p := compile(t, `genus where epithet contains "ax"`)
	assert.Contains(t, p.Where, "ILIKE")
	assert.Equal(t, "%ax%", p.Args[0])
}

func TestCompile_EmptyRelationIsNotExists(t *testing.T) {
	p := compile(t, `species where accession = Empty`)
	assert.Contains(t, p.Where, "NOT EXISTS")
}

func TestCompile_UnknownDomainErrors(t *testing.T) {
	q, err := query.ParseMapperQuery(`bogus where id = 1`)
	require.NoError(t, err)
	reg := plan.NewBotanicRegistry()
	c := plan.NewCompiler(reg, time.Now())
	_, err = c.Compile(q)
	require.Error(t, err)
}

func TestResolveDateLiteral_TodayYesterdayOffset(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	w, err := plan.ResolveDateLiteral("today", now)
	require.NoError(t, err)
	assert.Equal(t, 15, w.Start.Day())

	w, err = plan.ResolveDateLiteral("yesterday", now)
	require.NoError(t, err)
	assert.Equal(t, 14, w.Start.Day())

	w, err = plan.ResolveDateLiteral("-1", now)
	require.NoError(t, err)
	assert.Equal(t, 14, w.Start.Day())

	w, err = plan.ResolveDateLiteral("0", now)
	require.NoError(t, err)
	assert.Equal(t, 15, w.Start.Day())
}

func TestResolveDateLiteral_DDMMYYYY(t *testing.T) {
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	w, err := plan.ResolveDateLiteral("31/12/2024", now)
	require.NoError(t, err)
	assert.Equal(t, time.December, w.Start.Month())
	assert.Equal(t, 31, w.Start.Day())
	assert.Equal(t, w.Start.AddDate(0, 0, 1), w.End)
}

func TestNeedsConfirmation_SingleShortToken(t *testing.T) {
	assert.True(t, plan.NeedsConfirmation([]string{"ab"}))
	assert.False(t, plan.NeedsConfirmation([]string{"Ixora"}))
}

func TestNeedsConfirmation_ManyShortTokens(t *testing.T) {
	assert.True(t, plan.NeedsConfirmation([]string{"ab", "cd", "ef"}))
	assert.False(t, plan.NeedsConfirmation([]string{"ab", "Ixora"}))
}

func TestConfirm_DeclinesWhenCallbackReturnsFalse(t *testing.T) {
	ok := plan.Confirm(context.Background(), []string{"ab"}, "proceed?", func(context.Context, string) bool {
		return false
	})
	assert.False(t, ok)
}

// fakeSynRepo is a minimal taxon.Repository for exercising synonym
// augmentation, panicking on methods these tests don't exercise.
type fakeSynRepo struct {
	accepted map[string]*string
	synonyms map[string][]string
}

func (f *fakeSynRepo) Accepted(_ context.Context, _ taxon.TaxonRank, id string) (*string, error) {
	return f.accepted[id], nil
}
func (f *fakeSynRepo) Synonyms(_ context.Context, _ taxon.TaxonRank, id string) ([]string, error) {
	return f.synonyms[id], nil
}
func (f *fakeSynRepo) SetAccepted(context.Context, taxon.TaxonRank, string, *string) error {
	panic("unused")
}
func (f *fakeSynRepo) CreateFamily(context.Context, *taxon.Family) (*taxon.Family, error) { panic("unused") }
func (f *fakeSynRepo) UpdateFamily(context.Context, string, *taxon.Family) (*taxon.Family, error) {
	panic("unused")
}
func (f *fakeSynRepo) DeleteFamily(context.Context, string) error               { panic("unused") }
func (f *fakeSynRepo) GetFamily(context.Context, string) (*taxon.Family, error) { panic("unused") }
func (f *fakeSynRepo) CreateGenus(context.Context, *taxon.Genus) (*taxon.Genus, error) {
	panic("unused")
}
func (f *fakeSynRepo) UpdateGenus(context.Context, string, *taxon.Genus) (*taxon.Genus, error) {
	panic("unused")
}
func (f *fakeSynRepo) DeleteGenus(context.Context, string) error             { panic("unused") }
func (f *fakeSynRepo) GetGenus(context.Context, string) (*taxon.Genus, error) { panic("unused") }
func (f *fakeSynRepo) CreateSpecies(context.Context, *taxon.Species) (*taxon.Species, error) {
	panic("unused")
}
func (f *fakeSynRepo) UpdateSpecies(context.Context, string, *taxon.Species) (*taxon.Species, error) {
	panic("unused")
}
func (f *fakeSynRepo) DeleteSpecies(context.Context, string) error                 { panic("unused") }
func (f *fakeSynRepo) GetSpecies(context.Context, string) (*taxon.Species, error) { panic("unused") }
func (f *fakeSynRepo) CreateVernacularName(context.Context, *taxon.VernacularName) (*taxon.VernacularName, error) {
	panic("unused")
}
func (f *fakeSynRepo) DeleteVernacularName(context.Context, string) error { panic("unused") }
func (f *fakeSynRepo) SetDefaultVernacularName(context.Context, string, string) error {
	panic("unused")
}
func (f *fakeSynRepo) CreateGeography(context.Context, *taxon.Geography) (*taxon.Geography, error) {
	panic("unused")
}
func (f *fakeSynRepo) UpdateGeography(context.Context, string, *taxon.Geography) (*taxon.Geography, error) {
	panic("unused")
}
func (f *fakeSynRepo) GetGeography(context.Context, string) (*taxon.Geography, error) {
	panic("unused")
}
func (f *fakeSynRepo) AddDistribution(context.Context, string, string) error    { panic("unused") }
func (f *fakeSynRepo) RemoveDistribution(context.Context, string, string) error { panic("unused") }

func TestAugmentWithSynonyms_S5(t *testing.T) {
	// spec.md S5: value-list "Schetti" whose accepted is Ixora; result
	// must contain both.
	repo := &fakeSynRepo{
		accepted: map[string]*string{"schetti-id": strPtr("ixora-id")},
		synonyms: map[string][]string{},
	}
	ids, err := plan.AugmentWithSynonyms(context.Background(), repo, taxon.RankSpecies, []string{"schetti-id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"schetti-id", "ixora-id"}, ids)
}

func TestAugmentWithSynonyms_NoDuplicates(t *testing.T) {
	repo := &fakeSynRepo{
		accepted: map[string]*string{},
		synonyms: map[string][]string{"a": {"b"}, "b": {}},
	}
	ids, err := plan.AugmentWithSynonyms(context.Background(), repo, taxon.RankSpecies, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestAugmentVernacularNames_BothMustHaveNames(t *testing.T) {
	repo := &fakeSynRepo{
		accepted: map[string]*string{},
		synonyms: map[string][]string{"sp-a": {"sp-b"}},
	}
	names := map[string][]string{"sp-a": {"vn-1"}, "sp-b": {}}
	ids, err := plan.AugmentVernacularNames(context.Background(), repo, []string{"sp-a"}, func(spID string) ([]string, error) {
		return names[spID], nil
	})
	require.NoError(t, err)
	// sp-b has no vernacular names of its own, so its counterpart lookup
	// contributes nothing.
	assert.Equal(t, []string{"vn-1"}, ids)
}

func strPtr(s string) *string { return &s }

func TestPlanSQL_RendersSelectWithJoinsAndHaving(t *testing.T) {
	p := compile(t, `genus where count(species.id) == 2`)
	sql := p.SQL()
	assert.Contains(t, sql, "SELECT DISTINCT genus.id FROM genus genus")
	assert.Contains(t, sql, "GROUP BY genus.id")
	assert.Contains(t, sql, "HAVING")
}

func TestPlanSQL_RendersWhereWithoutGroupBy(t *testing.T) {
	p := compile(t, `plant where quantity > 1`)
	sql := p.SQL()
	assert.Contains(t, sql, "WHERE")
	assert.NotContains(t, sql, "GROUP BY")
}

func TestCompileDomainQuery_OrsAcrossSearchableColumns(t *testing.T) {
	reg := plan.NewBotanicRegistry()
	c := plan.NewCompiler(reg, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	dq, err := query.ParseDomainQuery(`sp = Maxillaria`)
	require.NoError(t, err)
	p, err := c.CompileDomainQuery(dq)
	require.NoError(t, err)
	assert.Equal(t, "species", p.RootTable)
	assert.Contains(t, p.Where, " OR ")
	assert.Len(t, p.Args, 5) // one per species.SearchableColumns entry
}

func TestCompileDomainQuery_Wildcard(t *testing.T) {
	reg := plan.NewBotanicRegistry()
	c := plan.NewCompiler(reg, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	dq, err := query.ParseDomainQuery(`geography like *`)
	require.NoError(t, err)
	p, err := c.CompileDomainQuery(dq)
	require.NoError(t, err)
	assert.Empty(t, p.Where)
	assert.Empty(t, p.Args)
}

func TestCompileDomainQuery_InListUsesInClause(t *testing.T) {
	reg := plan.NewBotanicRegistry()
	c := plan.NewCompiler(reg, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	dq, err := query.ParseDomainQuery(`acc in (Schetti, Ixora)`)
	require.NoError(t, err)
	p, err := c.CompileDomainQuery(dq)
	require.NoError(t, err)
	assert.Contains(t, p.Where, "IN (")
}

func TestCompileDomainQuery_UnknownDomainErrors(t *testing.T) {
	reg := plan.NewBotanicRegistry()
	c := plan.NewCompiler(reg, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	dq, err := query.ParseDomainQuery(`bogus = x`)
	require.NoError(t, err)
	_, err = c.CompileDomainQuery(dq)
	assert.Error(t, err)
}

package query_test

import (
	"testing"

	"github.com/gnames/botanic/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_BasicComparison(t *testing.T) {
	toks, err := query.Tokenize("species where genus.epithet = Maxillaria")
	require.NoError(t, err)
	require.True(t, len(toks) > 0)
	assert.Equal(t, query.TokEOF, toks[len(toks)-1].Kind)
}

func TestParseMapperQuery_S1(t *testing.T) {
	// spec.md S1: plant where (quantity > 1 or geojson = None) and id > 3
	q, err := query.ParseMapperQuery(`plant where (quantity > 1 or geojson = None) and id > 3`)
	require.NoError(t, err)
	assert.Equal(t, "plant", q.Domain)
	require.NotNil(t, q.Where)

	be, ok := q.Where.(query.BinaryExpr)
	require.True(t, ok, "top-level expr should be the AND")
	assert.Equal(t, query.BinAnd, be.Op)
}

func TestParseMapperQuery_S2_AggregateCount(t *testing.T) {
	// spec.md S2: genus where count(species.id) == 2
	q, err := query.ParseMapperQuery(`genus where count(species.id) == 2`)
	require.NoError(t, err)

	be, ok := q.Where.(query.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, query.BinEq, be.Op)

	fc, ok := be.Left.(query.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, query.FuncCount, fc.Name)

	path, ok := fc.Arg.(query.ColumnPath)
	require.True(t, ok)
	assert.Equal(t, "id", path.Column)
	require.Len(t, path.Steps, 1)
	assert.Equal(t, "species", path.Steps[0].Relation)
}

func TestParseMapperQuery_FilterBracket(t *testing.T) {
	q, err := query.ParseMapperQuery(`species where genus[epithet = Maxillaria].id != None`)
	require.NoError(t, err)
	be, ok := q.Where.(query.BinaryExpr)
	require.True(t, ok)

	path, ok := be.Left.(query.ColumnPath)
	require.True(t, ok)
	require.Len(t, path.Steps, 1)
	require.NotNil(t, path.Steps[0].Filter)
	assert.Len(t, path.Steps[0].Filter.Predicates, 1)
}

func TestParseMapperQuery_Between(t *testing.T) {
	q, err := query.ParseMapperQuery(`accession where date_recvd between 1 and 30`)
	require.NoError(t, err)
	_, ok := q.Where.(query.BetweenExpr)
	assert.True(t, ok)
}

func TestParseMapperQuery_NotIn(t *testing.T) {
	q, err := query.ParseMapperQuery(`species where genus.epithet not in (Ixora, Maxillaria)`)
	require.NoError(t, err)
	in, ok := q.Where.(query.InExpr)
	require.True(t, ok)
	assert.True(t, in.Negate)
	assert.Len(t, in.Values, 2)
}

func TestParseMapperQuery_CorrelatedSubquery_S4(t *testing.T) {
	// spec.md S4: accession where quantity_recvd = (sum(plant.quantity) correlate)
	q, err := query.ParseMapperQuery(`accession where quantity_recvd = (sum(plant.quantity) correlate)`)
	require.NoError(t, err)
	be, ok := q.Where.(query.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, query.BinEq, be.Op)

	sub, ok := be.Right.(query.Subquery)
	require.True(t, ok, "RHS should be a Subquery")
	assert.True(t, sub.Correlated)
	assert.Equal(t, "plant", sub.Domain)
	assert.Equal(t, "quantity", sub.SelectColumn)
	assert.Nil(t, sub.Where)
}

func TestParseMapperQuery_PlainGroupedComparisonIsNotSubquery(t *testing.T) {
	// A parenthesised RHS with no WHERE/CORRELATE is an ordinary grouped
	// expression, not a subquery.
	q, err := query.ParseMapperQuery(`plant where quantity = (1)`)
	require.NoError(t, err)
	be, ok := q.Where.(query.BinaryExpr)
	require.True(t, ok)
	lit, ok := be.Right.(query.Literal)
	require.True(t, ok)
	assert.Equal(t, query.LiteralInt, lit.Kind)
}

func TestParseMapperQuery_DomainSubqueryWithWhere(t *testing.T) {
	q, err := query.ParseMapperQuery(`species where genus.id in (genus where family.epithet = Orchidaceae)`)
	require.NoError(t, err)
	in, ok := q.Where.(query.InExpr)
	require.True(t, ok)
	require.NotNil(t, in.Subquery)
	assert.Equal(t, "genus", in.Subquery.Domain)
	assert.NotNil(t, in.Subquery.Where)
}

func TestParseMapperQuery_DateRangeBetween(t *testing.T) {
	// spec.md §4.5 item 6: BETWEEN over ISO and dd/mm/yyyy date literals.
	q, err := query.ParseMapperQuery(`accession where date_recvd between 2024-01-01 and 31/12/2024`)
	require.NoError(t, err)
	be, ok := q.Where.(query.BetweenExpr)
	require.True(t, ok)

	low, ok := be.Low.(query.Literal)
	require.True(t, ok)
	assert.Equal(t, query.LiteralDate, low.Kind)
	assert.Equal(t, "2024-01-01", low.Str)

	high, ok := be.High.(query.Literal)
	require.True(t, ok)
	assert.Equal(t, query.LiteralDate, high.Kind)
	assert.Equal(t, "31/12/2024", high.Str)
}

func TestTokenize_DayOffsetStaysInteger(t *testing.T) {
	// A lone "-1" (yesterday, §4.5 item 6) must stay an integer, not be
	// mistaken for a date literal.
	toks, err := query.Tokenize(`accession where date_recvd = -1`)
	require.NoError(t, err)
	var found bool
	for _, tok := range toks {
		if tok.Kind == query.TokInt && tok.Text == "-1" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseValueList_CommaAndWhitespace(t *testing.T) {
	vl, err := query.ParseValueList("Schetti, Ixora  rosea")
	require.NoError(t, err)
	assert.Equal(t, []string{"Schetti", "Ixora", "rosea"}, vl.Values)
}

func TestParseBinomial_S6(t *testing.T) {
	// spec.md S6: "Ixo ros 'Test-1"
	b, err := query.ParseBinomial(`Ixo ros 'Test-1`)
	require.NoError(t, err)
	assert.Equal(t, "Ixo", b.GenusPrefix)
	assert.Equal(t, "ros", b.SpeciesPrefix)
	assert.True(t, b.HasCultivar)
	assert.Equal(t, "Test-1", b.CultivarPrefix)
}

func TestParseMapperQuery_UnknownDomainIsSyntaxOnly(t *testing.T) {
	// ParseMapperQuery itself does not validate domain names against the
	// registry (that is C5's job, §4.5 item 1); it only requires a
	// leading identifier.
	q, err := query.ParseMapperQuery(`bogus where id = 1`)
	require.NoError(t, err)
	assert.Equal(t, "bogus", q.Domain)
}

func TestParseMapperQuery_TrailingGarbageIsSyntaxError(t *testing.T) {
	_, err := query.ParseMapperQuery(`species where id = 1 )`)
	require.Error(t, err)
}

func TestParseDomainQuery_Equals(t *testing.T) {
	d, err := query.ParseDomainQuery(`sp = Maxillaria`)
	require.NoError(t, err)
	assert.Equal(t, "sp", d.Domain)
	assert.Equal(t, query.OpEq, d.Op)
	require.Len(t, d.Values, 1)
	assert.Equal(t, "Maxillaria", d.Values[0].Str)
}

func TestParseDomainQuery_Contains(t *testing.T) {
	d, err := query.ParseDomainQuery(`species contains variegata`)
	require.NoError(t, err)
	assert.Equal(t, query.OpContains, d.Op)
	assert.Equal(t, "variegata", d.Values[0].Str)
}

func TestParseDomainQuery_InList(t *testing.T) {
	d, err := query.ParseDomainQuery(`acc in (Schetti, Ixora)`)
	require.NoError(t, err)
	assert.Equal(t, query.OpIn, d.Op)
	require.Len(t, d.Values, 2)
	assert.Equal(t, "Schetti", d.Values[0].Str)
	assert.Equal(t, "Ixora", d.Values[1].Str)
}

func TestParseDomainQuery_Wildcard(t *testing.T) {
	d, err := query.ParseDomainQuery(`geography like *`)
	require.NoError(t, err)
	require.Len(t, d.Values, 1)
	assert.Equal(t, query.LiteralWildcard, d.Values[0].Kind)
}

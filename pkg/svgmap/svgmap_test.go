package svgmap_test

import (
	"testing"

	"github.com/gnames/botanic/pkg/svgmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EmptySetProducesBareWorldLayer(t *testing.T) {
	svg, err := svgmap.Render(nil)
	require.NoError(t, err)
	assert.Contains(t, svg, `viewBox="-180 -90 360 180"`)
	assert.NotContains(t, svg, "<path")
}

func TestRender_PolygonProducesPath(t *testing.T) {
	gj := `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`
	svg, err := svgmap.Render([]string{gj})
	require.NoError(t, err)
	assert.Contains(t, svg, "<path")
	assert.Contains(t, svg, "M0,0")
}

func TestRender_SkipsBlankEntries(t *testing.T) {
	svg, err := svgmap.Render([]string{""})
	require.NoError(t, err)
	assert.NotContains(t, svg, "<path")
}

func TestRender_InvalidGeojsonErrors(t *testing.T) {
	_, err := svgmap.Render([]string{"not json"})
	assert.Error(t, err)
}

func TestKey_OrderIndependent(t *testing.T) {
	a := svgmap.Key([]string{"g1", "g2"}, "light")
	b := svgmap.Key([]string{"g2", "g1"}, "light")
	assert.Equal(t, a, b)
}

func TestKey_DiffersByPreference(t *testing.T) {
	a := svgmap.Key([]string{"g1"}, "light")
	b := svgmap.Key([]string{"g1"}, "dark")
	assert.NotEqual(t, a, b)
}

func TestCache_EvictsLeastRecentlyAccessed(t *testing.T) {
	c, err := svgmap.NewCache(2)
	require.NoError(t, err)

	c.Put("a", "<svg-a/>")
	c.Put("b", "<svg-b/>")
	_, _ = c.Get("a") // touch a so b is the LRU entry
	c.Put("c", "<svg-c/>")

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")
	assert.True(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)
	assert.Equal(t, 2, c.Len())
}

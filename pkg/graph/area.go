package graph

import (
	"fmt"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// GeodesicArea returns the WGS84-sphere area (km², signed: outer ring
// positive, holes subtract) of the given GeoJSON geometry string (§3
// Geography.approx_area, §4.3 "Area computation", testable property 4).
// An empty or absent geojson yields 0, per invariant 7.
func GeodesicArea(geojsonStr string) (float64, error) {
	if geojsonStr == "" {
		return 0, nil
	}

	g, err := geojson.UnmarshalGeometry([]byte(geojsonStr))
	if err != nil {
		return 0, &gn.Error{
			Code: errcode.GeographyAreaComputeError,
			Msg:  "failed to parse geojson polygon",
			Err:  fmt.Errorf("unmarshal geojson: %w", err),
		}
	}

	// geo.Area returns signed square meters (outer ring positive, holes
	// negative, per the GeoJSON right-hand rule). Convert to km².
	areaM2 := geo.Area(g.Geometry())
	return areaM2 / 1_000_000, nil
}

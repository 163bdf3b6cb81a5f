package history

import (
	"github.com/gnames/botanic/pkg/graph"
	"github.com/gnames/botanic/pkg/nameformat"
)

// DeriveSpeciesNames computes full_name (display, markup-able) and
// full_sci_name (with authors) from the same SpeciesInput (§4.7 "On
// Species.insert and Species.update, recompute full_name and
// full_sci_name from C1").
func DeriveSpeciesNames(in nameformat.SpeciesInput) (fullName, fullSciName string) {
	// RemoveZWS: the leading zero-width space Format inserts before the
	// epithet only matters for cursor placement in a live search view;
	// these two columns are stored literal text.
	flags := nameformat.NewFlags()
	flags.RemoveZWS = true
	fullName = nameformat.Format(in, flags)

	flags.Authors = true
	fullSciName = nameformat.Format(in, flags)
	return fullName, fullSciName
}

// DeriveGeographyArea computes approx_area from a geojson string, 0 for
// an empty one (§4.7 "On Geography.insert/update, set approx_area from
// geojson (or 0)").
func DeriveGeographyArea(geojsonStr string) (float64, error) {
	return graph.GeodesicArea(geojsonStr)
}

// Package svgmap implements the distribution-map renderer and its
// process-wide bounded cache (spec.md §6 "distribution_map(set_of_
// geography_ids) → SVG string", §5 "Shared resources": the image/SVG
// cache for distribution maps is process-wide, bounded, LRU, evicting
// least-recently-accessed).
package svgmap

import (
	"fmt"
	"strings"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ViewBox is the world-layer viewBox every rendered map shares: a flat
// equirectangular projection of longitude/latitude, flipped on Y since
// SVG's origin is top-left and latitude increases northward.
const ViewBox = "-180 -90 360 180"

// Render builds the SVG template for a set of selected geography
// polygons: a world layer plus one <path> per polygon (§6). geojsons
// holds the raw GeoJSON geometry string for each selected Geography; an
// empty entry contributes no path, while an entry that does not parse or
// is not a Polygon/MultiPolygon fails the whole render with an error.
func Render(geojsons []string) (string, error) {
	var paths strings.Builder
	for _, gj := range geojsons {
		if gj == "" {
			continue
		}
		d, err := pathData(gj)
		if err != nil {
			return "", err
		}
		if d == "" {
			continue
		}
		fmt.Fprintf(&paths, `<path d="%s" class="distribution"/>`, d)
	}

	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s">`+
			`<g transform="scale(1,-1)">`+
			`<rect class="world" x="-180" y="-90" width="360" height="180"/>`+
			`%s`+
			`</g></svg>`,
		ViewBox, paths.String(),
	), nil
}

func pathData(geojsonStr string) (string, error) {
	g, err := geojson.UnmarshalGeometry([]byte(geojsonStr))
	if err != nil {
		return "", &gn.Error{Code: errcode.SVGMapRenderError, Msg: "failed to parse geojson polygon", Err: err}
	}

	switch geom := g.Geometry().(type) {
	case orb.Polygon:
		return polygonPath(geom), nil
	case orb.MultiPolygon:
		var b strings.Builder
		for _, p := range geom {
			b.WriteString(polygonPath(p))
		}
		return b.String(), nil
	default:
		return "", &gn.Error{
			Code: errcode.SVGMapRenderError,
			Msg:  "unsupported geometry type for distribution map",
		}
	}
}

func polygonPath(p orb.Polygon) string {
	var b strings.Builder
	for _, ring := range p {
		if len(ring) == 0 {
			continue
		}
		fmt.Fprintf(&b, "M%g,%g", ring[0][0], ring[0][1])
		for _, pt := range ring[1:] {
			fmt.Fprintf(&b, "L%g,%g", pt[0], pt[1])
		}
		b.WriteString("Z")
	}
	return b.String()
}

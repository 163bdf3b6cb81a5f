package search

import (
	"context"
	"fmt"

	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/lifecycle"
	"github.com/gnames/botanic/pkg/search"
	"github.com/gnames/botanic/pkg/svgmap"
)

// Searcher implements lifecycle.Searcher: it wraps a pkg/search.Dispatcher
// for query execution and a DB-backed geojson lookup plus a process-wide
// svgmap.Cache for distribution-map rendering (§6).
type Searcher struct {
	DB         database.Operator
	Dispatcher *search.Dispatcher
	MapCache   *svgmap.Cache
}

// NewSearcher returns a Searcher. mapCacheCapacity bounds the process-wide
// distribution-map LRU (§5 "Shared resources").
func NewSearcher(db database.Operator, d *search.Dispatcher, mapCacheCapacity int) (*Searcher, error) {
	cache, err := svgmap.NewCache(mapCacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Searcher{DB: db, Dispatcher: d, MapCache: cache}, nil
}

var _ lifecycle.Searcher = (*Searcher)(nil)

// Search delegates to the wrapped Dispatcher.
func (s *Searcher) Search(ctx context.Context, queryText string) ([]string, error) {
	return s.Dispatcher.Search(ctx, queryText)
}

// DistributionMap renders (or reuses a cached render of) the SVG
// distribution map for a set of Geography ids.
func (s *Searcher) DistributionMap(ctx context.Context, geographyIDs []string, pref string) (string, error) {
	key := svgmap.Key(geographyIDs, pref)
	if cached, ok := s.MapCache.Get(key); ok {
		return cached, nil
	}

	rows, err := s.DB.Pool().Query(ctx,
		`SELECT geojson FROM geography WHERE id = ANY($1)`, geographyIDs)
	if err != nil {
		return "", fmt.Errorf("failed to load geography geojson: %w", err)
	}
	defer rows.Close()

	var geojsons []string
	for rows.Next() {
		var gj string
		if err := rows.Scan(&gj); err != nil {
			return "", fmt.Errorf("failed to scan geojson: %w", err)
		}
		geojsons = append(geojsons, gj)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating geojson rows: %w", err)
	}

	svg, err := svgmap.Render(geojsons)
	if err != nil {
		return "", err
	}
	s.MapCache.Put(key, svg)
	return svg, nil
}

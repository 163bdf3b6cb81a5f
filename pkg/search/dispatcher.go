// Package search implements the Search Dispatcher component (C6 of
// spec.md §4.6): a registry of named strategies, each deciding whether
// it applies to a query string, run in registration order so a later
// strategy (SynonymSearch) can read an earlier one's cached results.
package search

import "context"

// Applicability tells the dispatcher whether a strategy should run for
// a given query string, and whether running it should exclude later
// strategies from also running (§4.6 "applicable(query_text) →
// {include, exclude}" — e.g. a full mapper query excludes the simpler
// domain-prefix/value-list/binomial dialects from also attempting it).
type Applicability struct {
	Include bool
	Exclude []string // strategy names to skip this round
}

// Strategy is one named search dialect (domain-prefix, value-list,
// binomial, mapper-query, or a post-processing strategy like
// SynonymSearch that only reads the cache).
type Strategy interface {
	Name() string
	Applicable(queryText string) Applicability
	Search(ctx context.Context, queryText string, cache *Cache) ([]string, error)
}

// Cache is the dispatcher's per-query result cache, keyed by strategy
// name, so later strategies can read earlier ones' output (§4.5 note
// under item 10, §4.6 step 3).
type Cache struct {
	results map[string][]string
	order   []string
}

// NewCache returns an empty dispatcher cache.
func NewCache() *Cache {
	return &Cache{results: map[string][]string{}}
}

// Get returns the cached result of a named strategy, if it already ran.
func (c *Cache) Get(name string) ([]string, bool) {
	r, ok := c.results[name]
	return r, ok
}

func (c *Cache) set(name string, ids []string) {
	if _, exists := c.results[name]; !exists {
		c.order = append(c.order, name)
	}
	c.results[name] = ids
}

// Dispatcher runs registered strategies against a query string and
// merges their results.
type Dispatcher struct {
	strategies []Strategy
}

// NewDispatcher returns a Dispatcher with no strategies registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register appends a strategy; strategies run in registration order
// (§4.6 step 2).
func (d *Dispatcher) Register(s Strategy) {
	d.strategies = append(d.strategies, s)
}

// Search runs every applicable strategy in registration order, storing
// each one's output in the cache, and returns the union of all results
// preserving first-seen order (§4.6 steps 1-4).
func (d *Dispatcher) Search(ctx context.Context, queryText string) ([]string, error) {
	cache := NewCache()
	excluded := map[string]bool{}
	seen := map[string]bool{}
	var union []string

	for _, s := range d.strategies {
		if excluded[s.Name()] {
			continue
		}
		app := s.Applicable(queryText)
		if !app.Include {
			continue
		}
		for _, ex := range app.Exclude {
			excluded[ex] = true
		}

		ids, err := s.Search(ctx, queryText, cache)
		if err != nil {
			return nil, err
		}
		cache.set(s.Name(), ids)

		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			union = append(union, id)
		}
	}
	return union, nil
}

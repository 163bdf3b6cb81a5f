package search

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/gnames/botanic/pkg/plan"
	"github.com/gnames/botanic/pkg/query"
	"github.com/gnames/botanic/pkg/taxon"
)

// PlanExecutor runs a compiled plan.Plan against the store and returns
// matching row ids. Its implementation (internal/io/search) is the only
// DB-aware piece of the search pipeline; every Strategy here is pure
// orchestration over the AST/planner packages.
type PlanExecutor interface {
	Execute(ctx context.Context, p *plan.Plan) ([]string, error)
}

// domainPrefixRe matches "<domain> <op> ..." (§4.4 Domain variant),
// e.g. "sp = Maxillaria", "species contains variegata". The leading
// word still has to resolve against the domain registry for the
// strategy to actually claim the query (see Applicable).
var domainPrefixRe = regexp.MustCompile(`(?i)^[a-z_]+\s*(=|==|!=|>=|<=|>|<|like|contains|in)\s`)

// mapperQueryRe detects the presence of the mapper grammar's "where"
// clause separator.
var mapperWhereRe = regexp.MustCompile(`(?i)\bwhere\b`)

// binomialRe matches a capitalized word optionally followed by a
// lowercase word and/or a quoted cultivar (§4.4 Binomial variant,
// spec.md S6).
var binomialRe = regexp.MustCompile(`^[A-Z][a-zA-Z-]*(\s+[a-z][a-zA-Z-]*)?(\s*'[^']*)?$`)

// DomainPrefixStrategy implements the domain-prefix dialect (§4.4, §4.5
// item 1): "<domain> <op> <values>".
type DomainPrefixStrategy struct {
	Registry *plan.DomainRegistry
	Exec     PlanExecutor
	Now      func() time.Time
}

func (s *DomainPrefixStrategy) Name() string { return "domain" }

func (s *DomainPrefixStrategy) Applicable(qt string) Applicability {
	qt = strings.TrimSpace(qt)
	if !domainPrefixRe.MatchString(qt) {
		return Applicability{}
	}
	fields := strings.Fields(qt)
	if len(fields) == 0 {
		return Applicability{}
	}
	if _, err := s.Registry.Resolve(fields[0]); err != nil {
		return Applicability{}
	}
	return Applicability{Include: true, Exclude: []string{"valuelist", "binomial"}}
}

func (s *DomainPrefixStrategy) Search(ctx context.Context, qt string, _ *Cache) ([]string, error) {
	dq, err := query.ParseDomainQuery(qt)
	if err != nil {
		return nil, err
	}
	c := plan.NewCompiler(s.Registry, s.nowOrDefault())
	p, err := c.CompileDomainQuery(dq)
	if err != nil {
		return nil, err
	}
	return s.Exec.Execute(ctx, p)
}

func (s *DomainPrefixStrategy) nowOrDefault() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ValueListStrategy implements the value-list dialect (§4.4, §4.5 item
// 10): a comma/whitespace-separated set of prefixes matched against
// every taxon's display string.
type ValueListStrategy struct {
	Exec    ValueListExecutor
	Confirm plan.ConfirmFunc
}

// ValueListExecutor scans for taxa whose display string starts with one
// of values.
type ValueListExecutor interface {
	SearchValueList(ctx context.Context, values []string) ([]string, error)
}

func (s *ValueListStrategy) Name() string { return "valuelist" }

func (s *ValueListStrategy) Applicable(qt string) Applicability {
	qt = strings.TrimSpace(qt)
	if qt == "" || mapperWhereRe.MatchString(qt) || domainPrefixRe.MatchString(qt) {
		return Applicability{}
	}
	if binomialRe.MatchString(qt) {
		return Applicability{}
	}
	return Applicability{Include: true}
}

func (s *ValueListStrategy) Search(ctx context.Context, qt string, _ *Cache) ([]string, error) {
	vl, err := query.ParseValueList(qt)
	if err != nil {
		return nil, err
	}
	if !plan.Confirm(ctx, vl.Values, "this search may scan the whole collection, continue?", s.Confirm) {
		return nil, nil
	}
	return s.Exec.SearchValueList(ctx, vl.Values)
}

// BinomialStrategy implements the full-binomial dialect (§4.4, spec.md
// S6): "Genus species 'Cultivar'" prefix matching.
type BinomialStrategy struct {
	Exec BinomialExecutor
}

// BinomialExecutor scans species by genus/species/cultivar prefixes.
type BinomialExecutor interface {
	SearchBinomial(ctx context.Context, b *query.Binomial) ([]string, error)
}

func (s *BinomialStrategy) Name() string { return "binomial" }

func (s *BinomialStrategy) Applicable(qt string) Applicability {
	if !binomialRe.MatchString(strings.TrimSpace(qt)) {
		return Applicability{}
	}
	return Applicability{Include: true, Exclude: []string{"valuelist"}}
}

func (s *BinomialStrategy) Search(ctx context.Context, qt string, _ *Cache) ([]string, error) {
	b, err := query.ParseBinomial(qt)
	if err != nil {
		return nil, err
	}
	return s.Exec.SearchBinomial(ctx, b)
}

// MapperQueryStrategy implements the full mapper-query-language dialect
// (§4.4, §4.5).
type MapperQueryStrategy struct {
	Registry *plan.DomainRegistry
	Exec     PlanExecutor
	Now      func() time.Time
}

func (s *MapperQueryStrategy) Name() string { return "mapper" }

func (s *MapperQueryStrategy) Applicable(qt string) Applicability {
	if !mapperWhereRe.MatchString(qt) {
		return Applicability{}
	}
	return Applicability{Include: true, Exclude: []string{"domain", "valuelist", "binomial"}}
}

func (s *MapperQueryStrategy) Search(ctx context.Context, qt string, _ *Cache) ([]string, error) {
	q, err := query.ParseMapperQuery(qt)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	c := plan.NewCompiler(s.Registry, now)
	p, err := c.Compile(q)
	if err != nil {
		return nil, err
	}
	return s.Exec.Execute(ctx, p)
}

// SynonymStrategy implements §4.5 item 9 "Synonym augmentation" as a
// dispatcher strategy that reads the cache rather than the raw query
// text, so it always runs last among the strategies that found results.
type SynonymStrategy struct {
	Repo            taxon.Repository
	Rank            taxon.TaxonRank
	ReturnAccepted  func() bool
	ReadsFrom       []string // strategy names whose cached output to augment
}

func (s *SynonymStrategy) Name() string { return "synonym" }

func (s *SynonymStrategy) Applicable(_ string) Applicability {
	if s.ReturnAccepted != nil && !s.ReturnAccepted() {
		return Applicability{}
	}
	return Applicability{Include: true}
}

func (s *SynonymStrategy) Search(ctx context.Context, _ string, cache *Cache) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	for _, name := range s.ReadsFrom {
		found, ok := cache.Get(name)
		if !ok {
			continue
		}
		for _, id := range found {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return plan.AugmentWithSynonyms(ctx, s.Repo, s.Rank, ids)
}

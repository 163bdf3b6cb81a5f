package taxon

import (
	"strings"

	"github.com/gnames/botanic/pkg/nameparse"
)

// ParsedName is the genus/species epithet split nameparse.Pool extracts
// from a free-text scientific name, grounding §3's name-construction
// invariants against gnparser's canonical form rather than naive
// whitespace splitting (which the Binomial search dialect uses instead,
// since it only ever sees partial prefixes).
type ParsedName struct {
	Genus   string
	Species string
	Parsed  bool // false when gnparser couldn't parse the string at all
}

// ParseRawName decomposes a pasted scientific name (e.g. from an import
// file or a paste into the name field) into genus/species epithets via
// the botanical gnparser pool.
func ParseRawName(pool nameparse.Pool, raw string) (ParsedName, error) {
	result, err := pool.Parse(raw)
	if err != nil {
		return ParsedName{}, err
	}
	if !result.Parsed || result.Canonical == nil {
		return ParsedName{Parsed: false}, nil
	}
	fields := strings.Fields(result.Canonical.Simple)
	pn := ParsedName{Parsed: true}
	if len(fields) > 0 {
		pn.Genus = fields[0]
	}
	if len(fields) > 1 {
		pn.Species = fields[1]
	}
	return pn, nil
}

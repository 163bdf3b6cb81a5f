// Package nameparse provides a pool of gnparser instances dedicated to
// the botanical nomenclatural code, used to decompose free-text
// scientific names typed into a search box or an import field into
// genus/species/infraspecific parts (§4.4 Binomial dialect, §3 Species
// name construction). Adapted from the teacher's pkg/parserpool, this
// is botanical-only since botanic manages a plant collection.
package nameparse

import (
	"runtime"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool parses scientific name strings concurrently via a fixed-size
// pool of gnparser instances.
type Pool interface {
	// Parse decomposes nameString into its nomenclatural parts.
	Parse(nameString string) (parsed.Parsed, error)
	// Close releases every parser in the pool. After Close the pool must
	// not be used.
	Close()
}

// poolImpl implements Pool over a channel of botanical gnparser.GNparser
// instances, following the teacher's borrow/parse/return pattern.
type poolImpl struct {
	ch       chan gnparser.GNparser
	poolSize int
}

// NewPool creates a pool of jobsNum botanical parsers (runtime.NumCPU()
// when jobsNum is 0). OptWithDetails(true) is required to populate the
// Words field pkg/taxon's infraspecific-rank detection reads.
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize == 0 {
		poolSize = runtime.NumCPU()
	}
	cfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Botanical),
		gnparser.OptWithDetails(true),
	)
	return &poolImpl{ch: gnparser.NewPool(cfg, poolSize), poolSize: poolSize}
}

// Parse borrows a parser, parses nameString, and returns the parser to
// the pool. Safe for concurrent use.
func (p *poolImpl) Parse(nameString string) (parsed.Parsed, error) {
	parser := <-p.ch
	result := parser.ParseName(nameString)
	p.ch <- parser
	return result, nil
}

// Close drains and closes the pool's channel.
func (p *poolImpl) Close() {
	if p.ch == nil {
		return
	}
	close(p.ch)
	for range p.ch {
	}
}

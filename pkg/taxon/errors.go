// Package taxon implements the Domain Entities & Invariants component
// (C2 of spec.md §4.2): typed records, field validation, and the hybrid
// attributes (cites, active, family_name, infraspecific_rank, ...) that
// must be readable both in-memory and as a query expression (§4.2, §9
// HybridAttribute).
package taxon

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/botanic/pkg/errcode"
)

// ValidationError reports a field-level or invariant violation raised by
// Create/Update (§7 ValidationError). It wraps gn.Error so callers can
// use errors.As against gn.Error while keeping a domain-specific code.
func validationError(code gn.ErrorCode, field, msg string) error {
	return &gn.Error{
		Code: code,
		Msg:  fmt.Sprintf("%s: %s", field, msg),
	}
}

// InUseError reports a delete blocked by invariant 6 (§7 InUseError).
func inUseError(code gn.ErrorCode, msg string) error {
	return &gn.Error{
		Code: code,
		Msg:  msg,
	}
}

var (
	// ErrSynonymSelf is returned when a taxon is assigned as its own
	// accepted name (testable property 3).
	ErrSynonymSelf = validationError(errcode.ValidationSynonymSelfError,
		"accepted", "a taxon cannot be its own synonym")
)

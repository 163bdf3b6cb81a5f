package taxon

import (
	"fmt"

	"github.com/gnames/botanic/pkg/errcode"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/gnames/gn"
)

// errNotFound reports a Get/Update/Delete against a missing row. The
// domain doesn't have a dedicated "not found" error code (§7 enumerates
// ValidationError/InUseError/SearchError/DatabaseError), so this rides
// on DBConnectionError the way a missing row is, at bottom, a query that
// didn't find what the caller expected.
func errNotFound(table, id string) error {
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  fmt.Sprintf("%s %s not found", table, id),
	}
}

func inUseError(code gn.ErrorCode, msg string) error {
	return &gn.Error{Code: code, Msg: msg}
}

func citesToNull(c *taxon.CitesAppendix) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

func citesFromNull(s *string) *taxon.CitesAppendix {
	if s == nil {
		return nil
	}
	c := taxon.CitesAppendix(*s)
	return &c
}

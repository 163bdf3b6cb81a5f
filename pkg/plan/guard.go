package plan

import "context"

// ConfirmFunc asks the caller (the GUI or CLI) whether to proceed with a
// potentially too-broad scan. msg describes why confirmation is needed.
// Returning false aborts the search.
type ConfirmFunc func(ctx context.Context, msg string) bool

// shortTokenLen is the length below which a value-list token is
// considered "short" for the small-value guard (§4.5 item 10).
const shortTokenLen = 3

// NeedsConfirmation reports whether a value-list search over values
// should prompt the caller before scanning: a single short token, or
// many short tokens, each risk a full-table scan with a huge result set
// (§4.5 item 10 "Small-value guard").
func NeedsConfirmation(values []string) bool {
	if len(values) == 0 {
		return false
	}
	if len(values) == 1 && len(values[0]) <= shortTokenLen {
		return true
	}
	short := 0
	for _, v := range values {
		if len(v) <= shortTokenLen {
			short++
		}
	}
	return short == len(values) && len(values) > 1
}

// Confirm runs confirm (if non-nil) when NeedsConfirmation(values) is
// true, returning false only when the caller explicitly declines.
func Confirm(ctx context.Context, values []string, msg string, confirm ConfirmFunc) bool {
	if !NeedsConfirmation(values) || confirm == nil {
		return true
	}
	return confirm(ctx, msg)
}

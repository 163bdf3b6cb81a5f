package lifecycle

import (
	"context"

	"github.com/gnames/botanic/pkg/plan"
)

// ConfirmFunc is the app-level alias of pkg/plan's guard callback: the
// GUI or CLI wires one implementation into both the search pipeline and
// any other confirm-before-proceeding prompt (§6 "External contracts").
type ConfirmFunc = plan.ConfirmFunc

// Searcher is the external contract a GUI or CLI uses to run a query
// string through the dispatcher (§4.6) and to render a distribution map
// for a set of matched Geography ids (§6
// "distribution_map(set_of_geography_ids) → SVG string").
type Searcher interface {
	// Search runs queryText through whichever dialect claims it and
	// returns matching row ids.
	Search(ctx context.Context, queryText string) ([]string, error)

	// DistributionMap renders the cached (or freshly rendered) SVG
	// distribution map for a set of Geography ids.
	DistributionMap(ctx context.Context, geographyIDs []string, pref string) (string, error)
}

// ProgressSink receives progress updates from a long-running batch
// operation (§5 "batch rebuild tasks"), e.g. a GUI progress dialog or
// the CLI's progress bar.
type ProgressSink interface {
	Progress(done, total int)
}

// Rebuilder is the external contract driving a batch rebuild pass
// (§4.7, §5): recompute every Species' and Geography's derived columns,
// reporting progress and honoring ctx cancellation between chunks.
type Rebuilder interface {
	RebuildAll(ctx context.Context, sink ProgressSink) error
}

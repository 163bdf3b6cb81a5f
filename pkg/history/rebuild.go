package history

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ChunkSize returns the batch size that yields progress roughly every 5%
// of total (§4.7 "iterates ... in manageable chunks (yield every ~5% of
// work", §5 "Batch rebuild yields cooperatively after committing every
// ~5% chunk").
func ChunkSize(total int) int {
	if total <= 0 {
		return 0
	}
	size := total / 20
	if size < 1 {
		size = 1
	}
	return size
}

// ProgressFunc is called after each chunk commits, with work completed
// so far out of total.
type ProgressFunc func(done, total int)

// ChunkFunc persists one chunk of ids inside its own transaction. The
// rebuild command's chunk functions recompute and write the derived
// columns only; they write no history entries.
type ChunkFunc func(ctx context.Context, ids []string) error

// RebuildChunked drives ids through fn in ChunkSize(len(ids))-sized
// batches, calling progress after each commit and checking ctx
// cancellation before starting the next chunk (§5 "observes a
// cancellation flag at each yield point; on cancel it rolls back the
// uncommitted chunk only" — since each chunk is its own transaction, not
// starting the next chunk after cancellation satisfies this exactly).
func RebuildChunked(ctx context.Context, ids []string, fn ChunkFunc, progress ProgressFunc) error {
	size := ChunkSize(len(ids))
	if size == 0 {
		return nil
	}
	done := 0
	for done < len(ids) {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := done + size
		if end > len(ids) {
			end = len(ids)
		}
		if err := fn(ctx, ids[done:end]); err != nil {
			return err
		}
		done = end
		if progress != nil {
			progress(done, len(ids))
		}
	}
	return nil
}

// RebuildAll runs the full batch rebuild pass (species, then geography)
// on the single background worker thread the concurrency model allows
// (§5 "optional worker thread for batch rebuild tasks"), off the
// caller's goroutine. errgroup supplies the cancellation-propagating
// context the interactive cancel flag is wired to and collects the
// worker's error without the caller needing its own channel/WaitGroup.
func RebuildAll(
	ctx context.Context,
	speciesIDs, geographyIDs []string,
	rebuildSpecies, rebuildGeography ChunkFunc,
	speciesProgress, geoProgress ProgressFunc,
) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := RebuildChunked(ctx, speciesIDs, rebuildSpecies, speciesProgress); err != nil {
			return err
		}
		return RebuildChunked(ctx, geographyIDs, rebuildGeography, geoProgress)
	})
	return eg.Wait()
}

package pipeline

import (
	"context"
	"sync"

	"student-insights/internal/infrastructure"
	"student-insights/internal/model"
)

// ReportEntry is the outcome of one analysis in a report.
type ReportEntry struct {
	Analysis string
	Result   model.Result
	Err      error
}

// Report runs the named analyses, or the whole catalog when names is empty,
// on workerCount workers sharing one loaded table. Entries come back in the
// order of names; declined and failed analyses carry their error. Only a
// load failure or a cancelled context fails the report itself.
func Report(ctx context.Context, tr *Tracker, ds *Dataset, names []string, params model.Params, workerCount int) ([]ReportEntry, error) {
	if len(names) == 0 {
		for _, a := range catalog {
			names = append(names, a.Name)
		}
	}
	if workerCount < 1 {
		workerCount = 1
	}
	if _, err := ds.Table(ctx); err != nil {
		return nil, err
	}

	logger := infrastructure.LoggerFromContext(ctx)
	entries := make([]ReportEntry, len(names))
	jobs := make(chan int)

	var (
		wg                          sync.WaitGroup
		mu                          sync.Mutex
		completed, declined, failed int
	)

	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func(workerID int) {
			defer wg.Done()
			done := 0
			for i := range jobs {
				result, err := tr.Run(ctx, ds, names[i], params)
				entries[i] = ReportEntry{Analysis: names[i], Result: result, Err: err}
				done++

				mu.Lock()
				switch {
				case err == nil:
					completed++
				case IsPrecondition(err):
					declined++
				default:
					failed++
				}
				mu.Unlock()
			}
			logger.DebugContext(ctx, "report worker finished", "worker", workerID, "analyses", done)
		}(w)
	}

feed:
	for i := range names {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return entries, err
	}
	logger.InfoContext(ctx, "report finished",
		"analyses", len(names),
		"completed", completed,
		"declined", declined,
		"failed", failed)
	return entries, nil
}

// Package batch applies one workflow action to many applications, mirroring
// the caseworker bulk-review surface. Items commit independently: one
// failure is recorded and never aborts the rest of the batch.
package batch

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	id "opptak/pkg/domain"
)

// Action processes a single application.
type Action func(ctx context.Context, appID id.ApplicationID) error

// Failure records one item that could not be processed.
type Failure struct {
	ApplicationID id.ApplicationID
	Error         string
}

// Result aggregates per-item outcomes of one batch run.
type Result struct {
	Succeeded []id.ApplicationID
	Failed    []Failure
}

// Runner executes batch actions with bounded concurrency. Individual ledger
// reservations stay atomic; the batch as a whole is deliberately not.
type Runner struct {
	limit  int
	logger *slog.Logger
}

// NewRunner caps in-flight items at limit (minimum 1).
func NewRunner(limit int, logger *slog.Logger) *Runner {
	if limit < 1 {
		limit = 1
	}
	return &Runner{limit: limit, logger: logger}
}

// Run applies action to every id. Item errors are captured in the result,
// never returned: a batch always completes.
func (r *Runner) Run(ctx context.Context, appIDs []id.ApplicationID, action Action) Result {
	var (
		mu     sync.Mutex
		result Result
	)

	g := &errgroup.Group{}
	g.SetLimit(r.limit)
	for _, appID := range appIDs {
		g.Go(func() error {
			err := action(ctx, appID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, Failure{
					ApplicationID: appID,
					Error:         err.Error(),
				})
				r.logger.WarnContext(ctx, "batch item failed",
					"application_id", appID,
					"error", err,
				)
				return nil
			}
			result.Succeeded = append(result.Succeeded, appID)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; Wait only synchronizes

	// Concurrent completion scrambles order; sort for reproducible output.
	sort.Slice(result.Succeeded, func(i, j int) bool {
		return result.Succeeded[i].String() < result.Succeeded[j].String()
	})
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].ApplicationID.String() < result.Failed[j].ApplicationID.String()
	})
	return result
}

package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ImportReport aggregates the per-game outcomes of a bulk sync. One game's
// failure never aborts the batch; it is counted and listed instead.
type ImportReport struct {
	Added   int      `json:"added"`
	Merged  int      `json:"merged"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportAll reconciles a stream of candidates from a bulk Steam/PSN sync.
// Per-game work runs in a pool bounded by the service's concurrency limit,
// which also bounds outbound enrichment requests. Completion order within
// the pool is unspecified.
func (s *Service) ImportAll(ctx context.Context, ownerID uuid.UUID, candidates []Candidate, opts AddOptions) ImportReport {
	var (
		mu     sync.Mutex
		report ImportReport
	)

	g := &errgroup.Group{}
	g.SetLimit(s.concurrency)

	for _, cand := range candidates {
		cand := cand
		g.Go(func() error {
			_, outcome, err := s.AddOrMerge(ctx, ownerID, cand, opts)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", cand.Name, err))
				s.logger.Warn("sync skipped game", "owner", ownerID, "name", cand.Name, "error", err)
			case outcome == OutcomeCreated:
				report.Added++
			case outcome == OutcomeMerged:
				report.Merged++
			default:
				report.Skipped++
			}
			return nil
		})
	}
	g.Wait()

	s.logger.Info("sync finished", "owner", ownerID,
		"added", report.Added, "merged", report.Merged, "skipped", report.Skipped)
	return report
}

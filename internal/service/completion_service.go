package service

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"sort"
)

// --- Service Interface ---

// CompletionService aggregates completion reports from all of a coach's
// trainees into one recency-ordered feed.
type CompletionService interface {
	ListAllForCoach(ctx context.Context, coachID string) ([]domain.CompletionEvent, error)
	ObserveAllForCoach(ctx context.Context, coachID string) (<-chan repository.Batch[domain.CompletionEvent], error)
}

// --- Service Implementation ---

type completionService struct {
	completionRepo repository.CompletionRepository
}

// NewCompletionService creates a new instance of completionService.
func NewCompletionService(completionRepo repository.CompletionRepository) CompletionService {
	return &completionService{completionRepo: completionRepo}
}

// ListAllForCoach returns the coach's cross-trainee completion feed,
// newest first. An empty feed is a success, not an error.
func (s *completionService) ListAllForCoach(ctx context.Context, coachID string) ([]domain.CompletionEvent, error) {
	if coachID == "" {
		return nil, invalidArg("coach ID is required")
	}
	events, err := s.completionRepo.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, storeErr("completion list", err)
	}
	sortNewestFirst(events)
	return events, nil
}

// ObserveAllForCoach subscribes to the coach's cross-trainee completion
// query. Every emitted batch is re-sorted by completedAt descending before
// delivery; the sort is a post-processing step on each emission, not
// incremental. A subscription failure is one failing batch, then the
// stream ends.
func (s *completionService) ObserveAllForCoach(ctx context.Context, coachID string) (<-chan repository.Batch[domain.CompletionEvent], error) {
	if coachID == "" {
		return nil, invalidArg("coach ID is required")
	}
	in, err := s.completionRepo.WatchByCoach(ctx, coachID)
	if err != nil {
		return nil, storeErr("completion watch", err)
	}
	out := make(chan repository.Batch[domain.CompletionEvent], 1)
	go func() {
		defer close(out)
		for batch := range in {
			if batch.Err == nil {
				sortNewestFirst(batch.Items)
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
			if batch.Err != nil {
				return
			}
		}
	}()
	return out, nil
}

// sortNewestFirst orders by completedAt descending. The stable sort keeps
// the store's relative order for equal instants.
func sortNewestFirst(events []domain.CompletionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CompletedAt.After(events[j].CompletedAt)
	})
}

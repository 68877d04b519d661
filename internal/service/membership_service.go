package service

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"sort"
	"time"
)

// --- Service Interface ---

// MembershipService records which trainees have joined which coaches and
// exposes both sides of the relationship, one-shot and live.
type MembershipService interface {
	Join(ctx context.Context, traineeID, traineeName, coachID string) error
	ListJoined(ctx context.Context, traineeID string) ([]string, error)
	ObserveJoined(ctx context.Context, traineeID string) (<-chan repository.Batch[string], error)
	ListTrainees(ctx context.Context, coachID string) ([]domain.TraineeRef, error)
	ObserveTrainees(ctx context.Context, coachID string) (<-chan repository.Batch[domain.TraineeRef], error)
}

// --- Service Implementation ---

type membershipService struct {
	membershipRepo repository.MembershipRepository
}

// NewMembershipService creates a new instance of membershipService.
func NewMembershipService(membershipRepo repository.MembershipRepository) MembershipService {
	return &membershipService{membershipRepo: membershipRepo}
}

// Join upserts the trainee's membership under the coach. Re-joining the
// same coach refreshes joinedAt; it never creates a duplicate pair.
func (s *membershipService) Join(ctx context.Context, traineeID, traineeName, coachID string) error {
	if traineeID == "" || coachID == "" {
		return invalidArg("trainee ID and coach ID are required")
	}
	m := &domain.Membership{
		TraineeID:   traineeID,
		TraineeName: traineeName,
		CoachID:     coachID,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.membershipRepo.Upsert(ctx, m); err != nil {
		return storeErr("membership upsert", err)
	}
	return nil
}

// ListJoined returns a one-shot snapshot of the coach ids the trainee has
// joined.
func (s *membershipService) ListJoined(ctx context.Context, traineeID string) ([]string, error) {
	if traineeID == "" {
		return nil, invalidArg("trainee ID is required")
	}
	ids, err := s.membershipRepo.ListCoachIDs(ctx, traineeID)
	if err != nil {
		return nil, storeErr("membership list", err)
	}
	return ids, nil
}

// ObserveJoined emits the trainee's full joined-coach set on every change.
// A subscription failure is delivered as one failing batch and the stream
// ends; the caller must re-subscribe.
func (s *membershipService) ObserveJoined(ctx context.Context, traineeID string) (<-chan repository.Batch[string], error) {
	if traineeID == "" {
		return nil, invalidArg("trainee ID is required")
	}
	ch, err := s.membershipRepo.WatchCoachIDs(ctx, traineeID)
	if err != nil {
		return nil, storeErr("membership watch", err)
	}
	return ch, nil
}

// ListTrainees returns the coach's joined trainees sorted for display.
func (s *membershipService) ListTrainees(ctx context.Context, coachID string) ([]domain.TraineeRef, error) {
	if coachID == "" {
		return nil, invalidArg("coach ID is required")
	}
	refs, err := s.membershipRepo.ListTrainees(ctx, coachID)
	if err != nil {
		return nil, storeErr("trainee list", err)
	}
	sortTrainees(refs)
	return refs, nil
}

// ObserveTrainees is the live counterpart of ListTrainees; every emitted
// batch is re-sorted before delivery.
func (s *membershipService) ObserveTrainees(ctx context.Context, coachID string) (<-chan repository.Batch[domain.TraineeRef], error) {
	if coachID == "" {
		return nil, invalidArg("coach ID is required")
	}
	in, err := s.membershipRepo.WatchTrainees(ctx, coachID)
	if err != nil {
		return nil, storeErr("trainee watch", err)
	}
	out := make(chan repository.Batch[domain.TraineeRef], 1)
	go func() {
		defer close(out)
		for batch := range in {
			if batch.Err == nil {
				sortTrainees(batch.Items)
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

// sortTrainees orders by display name, falling back to the raw trainee id
// when the name is blank. Case-sensitive lexicographic order.
func sortTrainees(refs []domain.TraineeRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return traineeSortKey(refs[i]) < traineeSortKey(refs[j])
	})
}

func traineeSortKey(ref domain.TraineeRef) string {
	if ref.DisplayName != "" {
		return ref.DisplayName
	}
	return ref.TraineeID
}

package service

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replayCompletionRepo serves canned events and stream batches.
type replayCompletionRepo struct {
	events  []domain.CompletionEvent
	listErr error
	batches chan repository.Batch[domain.CompletionEvent]
}

var _ repository.CompletionRepository = (*replayCompletionRepo)(nil)

func (f *replayCompletionRepo) Create(context.Context, *domain.CompletionEvent) error { return nil }

func (f *replayCompletionRepo) ListByCoach(context.Context, string) ([]domain.CompletionEvent, error) {
	return append([]domain.CompletionEvent(nil), f.events...), f.listErr
}

func (f *replayCompletionRepo) WatchByCoach(context.Context, string) (<-chan repository.Batch[domain.CompletionEvent], error) {
	return f.batches, nil
}

func eventAt(id string, at time.Time) domain.CompletionEvent {
	return domain.CompletionEvent{
		ID: id, CoachID: "coach-1", TraineeID: "trainee-1",
		PlanID: "p1", PlanName: "Leg Day", CompletedAt: at,
	}
}

func TestCompletionService_ListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &replayCompletionRepo{events: []domain.CompletionEvent{
		eventAt("e3", base.Add(3*time.Hour)),
		eventAt("e1", base.Add(1*time.Hour)),
		eventAt("e2", base.Add(2*time.Hour)),
	}}
	s := NewCompletionService(repo)

	events, err := s.ListAllForCoach(ctx, "coach-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e3", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)
	assert.Equal(t, "e1", events[2].ID)
}

func TestCompletionService_EqualInstantsKeepStoreOrder(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &replayCompletionRepo{events: []domain.CompletionEvent{
		eventAt("first", at),
		eventAt("second", at),
	}}
	s := NewCompletionService(repo)

	events, err := s.ListAllForCoach(ctx, "coach-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].ID)
	assert.Equal(t, "second", events[1].ID)
}

func TestCompletionService_EmptyFeedIsSuccess(t *testing.T) {
	ctx := context.Background()
	repo := &replayCompletionRepo{}
	s := NewCompletionService(repo)

	events, err := s.ListAllForCoach(ctx, "coach-1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCompletionService_ListValidationAndStoreError(t *testing.T) {
	ctx := context.Background()
	s := NewCompletionService(&replayCompletionRepo{})

	_, err := s.ListAllForCoach(ctx, "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	failing := &replayCompletionRepo{listErr: assert.AnError}
	s = NewCompletionService(failing)
	_, err = s.ListAllForCoach(ctx, "coach-1")
	require.ErrorIs(t, err, ErrStore)
}

func TestCompletionService_ObserveSortsEveryEmission(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	batches := make(chan repository.Batch[domain.CompletionEvent], 2)
	batches <- repository.Batch[domain.CompletionEvent]{Items: []domain.CompletionEvent{
		eventAt("e1", base.Add(1 * time.Hour)),
		eventAt("e3", base.Add(3 * time.Hour)),
	}}
	batches <- repository.Batch[domain.CompletionEvent]{Items: []domain.CompletionEvent{
		eventAt("e1", base.Add(1 * time.Hour)),
		eventAt("e3", base.Add(3 * time.Hour)),
		eventAt("e2", base.Add(2 * time.Hour)),
	}}
	close(batches)

	repo := &replayCompletionRepo{batches: batches}
	s := NewCompletionService(repo)

	out, err := s.ObserveAllForCoach(ctx, "coach-1")
	require.NoError(t, err)

	first := <-out
	require.NoError(t, first.Err)
	assert.Equal(t, "e3", first.Items[0].ID)

	second := <-out
	require.NoError(t, second.Err)
	require.Len(t, second.Items, 3)
	assert.Equal(t, "e3", second.Items[0].ID)
	assert.Equal(t, "e2", second.Items[1].ID)
	assert.Equal(t, "e1", second.Items[2].ID)

	_, open := <-out
	assert.False(t, open)
}

func TestCompletionService_ObserveForwardsFailureThenStops(t *testing.T) {
	ctx := context.Background()
	batches := make(chan repository.Batch[domain.CompletionEvent], 1)
	batches <- repository.Batch[domain.CompletionEvent]{Err: assert.AnError}

	repo := &replayCompletionRepo{batches: batches}
	s := NewCompletionService(repo)

	out, err := s.ObserveAllForCoach(ctx, "coach-1")
	require.NoError(t, err)

	batch := <-out
	require.Error(t, batch.Err)

	_, open := <-out
	assert.False(t, open, "stream should end after one failure emission")
}

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

// capturingPlanRepo records writes for assertion.
type capturingPlanRepo struct {
	broadcasts []domain.Plan
	inboxes    []domain.Plan
	inboxTo    []string
	deleted    [][2]string // traineeID, planID

	err error
}

var _ repository.PlanRepository = (*capturingPlanRepo)(nil)

func (f *capturingPlanRepo) UpsertBroadcast(_ context.Context, plan *domain.Plan) error {
	if f.err != nil {
		return f.err
	}
	f.broadcasts = append(f.broadcasts, *plan)
	return nil
}

func (f *capturingPlanRepo) UpsertInbox(_ context.Context, traineeID string, plan *domain.Plan) error {
	if f.err != nil {
		return f.err
	}
	f.inboxes = append(f.inboxes, *plan)
	f.inboxTo = append(f.inboxTo, traineeID)
	return nil
}

func (f *capturingPlanRepo) DeleteInbox(_ context.Context, traineeID, planID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, [2]string{traineeID, planID})
	return nil
}

func (f *capturingPlanRepo) ListBroadcast(context.Context, string) ([]domain.Plan, error) {
	return nil, nil
}
func (f *capturingPlanRepo) ListInbox(context.Context, string) ([]domain.Plan, error) {
	return nil, nil
}
func (f *capturingPlanRepo) WatchBroadcast(context.Context, string) (<-chan repository.Batch[domain.Plan], error) {
	return nil, nil
}
func (f *capturingPlanRepo) WatchInbox(context.Context, string) (<-chan repository.Batch[domain.Plan], error) {
	return nil, nil
}

// capturingCompletionRepo records created events.
type capturingCompletionRepo struct {
	created []domain.CompletionEvent
	err     error
}

var _ repository.CompletionRepository = (*capturingCompletionRepo)(nil)

func (f *capturingCompletionRepo) Create(_ context.Context, event *domain.CompletionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *event)
	return nil
}

func (f *capturingCompletionRepo) ListByCoach(context.Context, string) ([]domain.CompletionEvent, error) {
	return nil, nil
}
func (f *capturingCompletionRepo) WatchByCoach(context.Context, string) (<-chan repository.Batch[domain.CompletionEvent], error) {
	return nil, nil
}

func validPlan() *domain.Plan {
	sets := 3
	return &domain.Plan{
		ID:        "p1",
		Name:      "Leg Day",
		Exercises: []domain.Exercise{{Name: "Squat", Sets: &sets}},
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
}

func TestPublisherService_PublishBroadcastStampsMetadata(t *testing.T) {
	ctx := context.Background()
	planRepo := &capturingPlanRepo{}
	s := NewPublisherService(planRepo, &capturingCompletionRepo{})

	plan := validPlan()
	require.NoError(t, s.PublishBroadcast(ctx, "coach-1", plan))

	require.Len(t, planRepo.broadcasts, 1)
	written := planRepo.broadcasts[0]
	assert.Equal(t, "coach-1", written.CoachID)
	assert.WithinDuration(t, time.Now().UTC(), written.PublishedAt, time.Minute)

	// The caller's plan is untouched; the service writes a stamped copy.
	assert.True(t, plan.PublishedAt.IsZero())
}

func TestPublisherService_PublishKeepsProvidedPublishedAt(t *testing.T) {
	ctx := context.Background()
	planRepo := &capturingPlanRepo{}
	s := NewPublisherService(planRepo, &capturingCompletionRepo{})

	plan := validPlan()
	republishAt := time.Now().UTC().Add(-time.Minute)
	plan.PublishedAt = republishAt

	require.NoError(t, s.PublishBroadcast(ctx, "coach-1", plan))
	require.Len(t, planRepo.broadcasts, 1)
	assert.True(t, planRepo.broadcasts[0].PublishedAt.Equal(republishAt))
}

func TestPublisherService_PublishValidation(t *testing.T) {
	ctx := context.Background()
	planRepo := &capturingPlanRepo{}
	s := NewPublisherService(planRepo, &capturingCompletionRepo{})

	require.ErrorIs(t, s.PublishBroadcast(ctx, "", validPlan()), ErrInvalidArgument)
	require.ErrorIs(t, s.PublishBroadcast(ctx, "coach-1", nil), ErrInvalidArgument)

	noName := validPlan()
	noName.Name = ""
	require.ErrorIs(t, s.PublishBroadcast(ctx, "coach-1", noName), ErrInvalidArgument)

	badSets := validPlan()
	zero := 0
	badSets.Exercises[0].Sets = &zero
	require.ErrorIs(t, s.PublishBroadcast(ctx, "coach-1", badSets), ErrInvalidArgument)

	backdated := validPlan()
	backdated.PublishedAt = backdated.CreatedAt.Add(-time.Hour)
	require.ErrorIs(t, s.PublishBroadcast(ctx, "coach-1", backdated), ErrInvalidArgument)

	assert.Empty(t, planRepo.broadcasts, "invalid plans must not reach the store")
}

func TestPublisherService_PublishToTrainee(t *testing.T) {
	ctx := context.Background()
	planRepo := &capturingPlanRepo{}
	s := NewPublisherService(planRepo, &capturingCompletionRepo{})

	require.ErrorIs(t, s.PublishToTrainee(ctx, "coach-1", "", validPlan()), ErrInvalidArgument)

	require.NoError(t, s.PublishToTrainee(ctx, "coach-1", "trainee-1", validPlan()))
	require.Len(t, planRepo.inboxes, 1)
	assert.Equal(t, "trainee-1", planRepo.inboxTo[0])
	assert.Equal(t, "coach-1", planRepo.inboxes[0].CoachID)
}

func TestPublisherService_ReportCompletion(t *testing.T) {
	ctx := context.Background()
	completionRepo := &capturingCompletionRepo{}
	s := NewPublisherService(&capturingPlanRepo{}, completionRepo)

	require.ErrorIs(t, s.ReportCompletion(ctx, "", "trainee-1", "p1", "Leg Day"), ErrInvalidArgument)

	require.NoError(t, s.ReportCompletion(ctx, "coach-1", "trainee-1", "p1", "Leg Day"))
	require.NoError(t, s.ReportCompletion(ctx, "coach-1", "trainee-1", "p1", "Leg Day"))

	// Two reports, two events: append-only, never an update.
	require.Len(t, completionRepo.created, 2)
	first, second := completionRepo.created[0], completionRepo.created[1]
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID, "each event gets a fresh identifier")
	assert.Equal(t, "Leg Day", first.PlanName)
	assert.WithinDuration(t, time.Now().UTC(), first.CompletedAt, time.Minute)
}

func TestPublisherService_DeleteFromInbox(t *testing.T) {
	ctx := context.Background()
	planRepo := &capturingPlanRepo{}
	s := NewPublisherService(planRepo, &capturingCompletionRepo{})

	require.ErrorIs(t, s.DeleteFromInbox(ctx, "", "p1"), ErrInvalidArgument)
	require.ErrorIs(t, s.DeleteFromInbox(ctx, "trainee-1", ""), ErrInvalidArgument)

	require.NoError(t, s.DeleteFromInbox(ctx, "trainee-1", "p2"))
	require.Len(t, planRepo.deleted, 1)
	assert.Equal(t, [2]string{"trainee-1", "p2"}, planRepo.deleted[0])
}

func TestPublisherService_StoreErrorsWrap(t *testing.T) {
	ctx := context.Background()
	planRepo := &capturingPlanRepo{err: assert.AnError}
	completionRepo := &capturingCompletionRepo{err: assert.AnError}
	s := NewPublisherService(planRepo, completionRepo)

	require.ErrorIs(t, s.PublishBroadcast(ctx, "coach-1", validPlan()), ErrStore)
	require.ErrorIs(t, s.PublishToTrainee(ctx, "coach-1", "trainee-1", validPlan()), ErrStore)
	require.ErrorIs(t, s.ReportCompletion(ctx, "coach-1", "trainee-1", "p1", "n"), ErrStore)
	require.ErrorIs(t, s.DeleteFromInbox(ctx, "trainee-1", "p1"), ErrStore)
}

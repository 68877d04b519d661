package service

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Service Interface ---

// PublisherService distributes a coach's plans through the two channels
// and records trainee completion reports. Failures return with their
// cause; nothing here retries — the caller decides.
type PublisherService interface {
	PublishBroadcast(ctx context.Context, coachID string, plan *domain.Plan) error
	PublishToTrainee(ctx context.Context, coachID, traineeID string, plan *domain.Plan) error
	ReportCompletion(ctx context.Context, coachID, traineeID, planID, planName string) error
	DeleteFromInbox(ctx context.Context, traineeID, planID string) error
}

// --- Service Implementation ---

type publisherService struct {
	planRepo       repository.PlanRepository
	completionRepo repository.CompletionRepository
}

// NewPublisherService creates a new instance of publisherService.
func NewPublisherService(
	planRepo repository.PlanRepository,
	completionRepo repository.CompletionRepository,
) PublisherService {
	return &publisherService{
		planRepo:       planRepo,
		completionRepo: completionRepo,
	}
}

// preparePlan validates the plan and stamps distribution metadata:
// CoachID is forced to the publishing coach and PublishedAt is set to now
// when the payload carries none. Returns a copy; the caller's plan is not
// mutated on failure.
func preparePlan(coachID string, plan *domain.Plan) (*domain.Plan, error) {
	if coachID == "" {
		return nil, invalidArg("coach ID is required")
	}
	if plan == nil {
		return nil, invalidArg("plan is required")
	}
	p := *plan
	p.CoachID = coachID
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	if err := p.Validate(); err != nil {
		return nil, invalidArg(err.Error())
	}
	return &p, nil
}

// PublishBroadcast merge-writes the plan into the coach's broadcast
// channel, visible to every joined trainee.
func (s *publisherService) PublishBroadcast(ctx context.Context, coachID string, plan *domain.Plan) error {
	p, err := preparePlan(coachID, plan)
	if err != nil {
		return err
	}
	if err := s.planRepo.UpsertBroadcast(ctx, p); err != nil {
		return storeErr("broadcast publish", err)
	}
	return nil
}

// PublishToTrainee merge-writes the plan into one trainee's private inbox.
func (s *publisherService) PublishToTrainee(ctx context.Context, coachID, traineeID string, plan *domain.Plan) error {
	if traineeID == "" {
		return invalidArg("trainee ID is required")
	}
	p, err := preparePlan(coachID, plan)
	if err != nil {
		return err
	}
	if err := s.planRepo.UpsertInbox(ctx, traineeID, p); err != nil {
		return storeErr("inbox publish", err)
	}
	return nil
}

// ReportCompletion appends one immutable completion event with a freshly
// generated identifier. PlanName is denormalized here and never
// re-resolved.
func (s *publisherService) ReportCompletion(ctx context.Context, coachID, traineeID, planID, planName string) error {
	if coachID == "" || traineeID == "" || planID == "" {
		return invalidArg("coach ID, trainee ID, and plan ID are required")
	}
	event := &domain.CompletionEvent{
		ID:          uuid.NewString(),
		CoachID:     coachID,
		TraineeID:   traineeID,
		PlanID:      planID,
		PlanName:    planName,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.completionRepo.Create(ctx, event); err != nil {
		return storeErr("completion report", err)
	}
	return nil
}

// DeleteFromInbox removes the targeted copy of a plan from the trainee's
// inbox ("mark as read"). A broadcast copy of the same plan id is not
// affected.
func (s *publisherService) DeleteFromInbox(ctx context.Context, traineeID, planID string) error {
	if traineeID == "" || planID == "" {
		return invalidArg("trainee ID and plan ID are required")
	}
	if err := s.planRepo.DeleteInbox(ctx, traineeID, planID); err != nil {
		return storeErr("inbox delete", err)
	}
	return nil
}

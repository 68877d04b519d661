// internal/api/dto.go
package api

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// --- Plan DTOs (wire shape uses epoch milliseconds) ---

type ExerciseRequest struct {
	Name   string   `json:"name" binding:"required"`
	Sets   *int     `json:"sets,omitempty"`
	Reps   *int     `json:"reps,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
}

type PlanRequest struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name" binding:"required"`
	Exercises          []ExerciseRequest `json:"exercises"`
	CreatedAtEpochMs   int64             `json:"createdAtEpochMs"`
	PublishedAtEpochMs int64             `json:"publishedAtEpochMs"`
	UpdatedAtEpochMs   int64             `json:"updatedAtEpochMs"`
}

type PlanResponse struct {
	ID                 string            `json:"id"`
	CoachID            string            `json:"coachId"`
	Name               string            `json:"name"`
	Exercises          []ExerciseRequest `json:"exercises"`
	CreatedAtEpochMs   int64             `json:"createdAtEpochMs"`
	PublishedAtEpochMs int64             `json:"publishedAtEpochMs"`
	UpdatedAtEpochMs   int64             `json:"updatedAtEpochMs"`
}

type PlanItemResponse struct {
	Plan            PlanResponse `json:"plan"`
	SourceCoachID   string       `json:"sourceCoachId,omitempty"`
	SourceCoachName string       `json:"sourceCoachName,omitempty"`
	IsInbox         bool         `json:"isInbox"`
}

type CompletionResponse struct {
	ID                 string `json:"id"`
	CoachID            string `json:"coachId"`
	TraineeID          string `json:"traineeId"`
	PlanID             string `json:"planId"`
	PlanName           string `json:"planName"`
	CompletedAtEpochMs int64  `json:"completedAtEpochMs"`
}

func epochMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timeFromMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// MapRequestToPlan builds the domain plan from the request payload.
// A blank id means first-time creation: the server assigns a fresh opaque
// id and stamps createdAt. Republished plans carry their original id and
// createdAt.
func MapRequestToPlan(req *PlanRequest) *domain.Plan {
	plan := &domain.Plan{
		ID:          req.ID,
		Name:        req.Name,
		CreatedAt:   timeFromMs(req.CreatedAtEpochMs),
		PublishedAt: timeFromMs(req.PublishedAtEpochMs),
		UpdatedAt:   timeFromMs(req.UpdatedAtEpochMs),
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	if req.Exercises != nil {
		plan.Exercises = make([]domain.Exercise, len(req.Exercises))
		for i, ex := range req.Exercises {
			plan.Exercises[i] = domain.Exercise{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Weight: ex.Weight}
		}
	}
	return plan
}

// MapPlanToResponse converts a domain plan to its wire shape.
func MapPlanToResponse(plan *domain.Plan) PlanResponse {
	exercises := make([]ExerciseRequest, len(plan.Exercises))
	for i, ex := range plan.Exercises {
		exercises[i] = ExerciseRequest{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Weight: ex.Weight}
	}
	return PlanResponse{
		ID:                 plan.ID,
		CoachID:            plan.CoachID,
		Name:               plan.Name,
		Exercises:          exercises,
		CreatedAtEpochMs:   epochMs(plan.CreatedAt),
		PublishedAtEpochMs: epochMs(plan.PublishedAt),
		UpdatedAtEpochMs:   epochMs(plan.UpdatedAt),
	}
}

// MapItemsToResponse converts a merged cache snapshot to its wire shape.
func MapItemsToResponse(items []domain.RemotePlanItem) []PlanItemResponse {
	out := make([]PlanItemResponse, len(items))
	for i, item := range items {
		out[i] = PlanItemResponse{
			Plan:            MapPlanToResponse(&item.Plan),
			SourceCoachID:   item.SourceCoachID,
			SourceCoachName: item.SourceCoachName,
			IsInbox:         item.IsInbox,
		}
	}
	return out
}

// MapCompletionsToResponse converts completion events to their wire shape.
func MapCompletionsToResponse(events []domain.CompletionEvent) []CompletionResponse {
	out := make([]CompletionResponse, len(events))
	for i, ev := range events {
		out[i] = CompletionResponse{
			ID:                 ev.ID,
			CoachID:            ev.CoachID,
			TraineeID:          ev.TraineeID,
			PlanID:             ev.PlanID,
			PlanName:           ev.PlanName,
			CompletedAtEpochMs: epochMs(ev.CompletedAt),
		}
	}
	return out
}

// respondServiceError maps the service error taxonomy to HTTP codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStore):
		abortWithError(c, http.StatusBadGateway, "Store operation failed.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal error.")
	}
}

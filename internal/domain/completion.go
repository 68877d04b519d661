// internal/domain/completion.go
package domain

import "time"

// CompletionEvent is a trainee's report that a plan was completed.
// Events are append-only: created exactly once, never updated. PlanName is
// denormalized at write time and is not re-resolved if the plan is later
// renamed or deleted.
type CompletionEvent struct {
	ID          string    `json:"id"`
	CoachID     string    `json:"coachId"`
	TraineeID   string    `json:"traineeId"`
	PlanID      string    `json:"planId"`
	PlanName    string    `json:"planName"`
	CompletedAt time.Time `json:"completedAt"`
}

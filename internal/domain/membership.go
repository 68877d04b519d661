// internal/domain/membership.go
package domain

import "time"

// Membership records that a trainee has joined a coach. The (TraineeID,
// CoachID) pair is the identity; re-joining refreshes JoinedAt instead of
// creating a duplicate. TraineeName is denormalized at join time so the
// coach-side trainee list needs no profile lookup.
type Membership struct {
	TraineeID   string    `json:"traineeId"`
	TraineeName string    `json:"traineeName,omitempty"`
	CoachID     string    `json:"coachId"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// TraineeRef is the coach-side view of one joined trainee.
type TraineeRef struct {
	TraineeID   string `json:"traineeId"`
	DisplayName string `json:"displayName,omitempty"`
}

// internal/domain/plan.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Exercise is one entry in a plan's ordered exercise list.
// Sets/Reps/Weight are optional; nil means "not prescribed".
type Exercise struct {
	Name   string   `bson:"name" json:"name"`
	Sets   *int     `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps   *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
}

// Plan is a coach-authored training plan. The ID is opaque, assigned by the
// author at creation and immutable afterwards; it is the identity used for
// de-duplication across the broadcast and inbox channels.
type Plan struct {
	ID          string     `json:"id"`
	CoachID     string     `json:"coachId"`
	Name        string     `json:"name"`
	Exercises   []Exercise `json:"exercises"`
	CreatedAt   time.Time  `json:"createdAt"`
	PublishedAt time.Time  `json:"publishedAt"` // refreshed on every (re-)distribution
	UpdatedAt   time.Time  `json:"updatedAt"`   // advisory
}

// Validate checks the structural invariants of a plan before it is written.
func (p *Plan) Validate() error {
	if p.ID == "" {
		return errors.New("plan id is required")
	}
	if p.Name == "" {
		return errors.New("plan name is required")
	}
	for i, ex := range p.Exercises {
		if ex.Name == "" {
			return fmt.Errorf("exercise[%d]: name is required", i)
		}
		if ex.Sets != nil && *ex.Sets <= 0 {
			return fmt.Errorf("exercise[%d]: sets must be positive", i)
		}
		if ex.Reps != nil && *ex.Reps <= 0 {
			return fmt.Errorf("exercise[%d]: reps must be positive", i)
		}
		if ex.Weight != nil && *ex.Weight < 0 {
			return fmt.Errorf("exercise[%d]: weight must not be negative", i)
		}
	}
	// createdAt <= publishedAt when both are set
	if !p.CreatedAt.IsZero() && !p.PublishedAt.IsZero() && p.PublishedAt.Before(p.CreatedAt) {
		return errors.New("plan publishedAt precedes createdAt")
	}
	return nil
}

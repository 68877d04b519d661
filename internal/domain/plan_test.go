package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanValidate(t *testing.T) {
	sets, reps := 3, 10
	weight := 60.5
	now := time.Now().UTC()

	valid := Plan{
		ID:          "p1",
		Name:        "Leg Day",
		Exercises:   []Exercise{{Name: "Squat", Sets: &sets, Reps: &reps, Weight: &weight}},
		CreatedAt:   now.Add(-time.Hour),
		PublishedAt: now,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Plan)
	}{
		{"missing id", func(p *Plan) { p.ID = "" }},
		{"missing name", func(p *Plan) { p.Name = "" }},
		{"blank exercise name", func(p *Plan) { p.Exercises[0].Name = "" }},
		{"zero sets", func(p *Plan) { z := 0; p.Exercises[0].Sets = &z }},
		{"negative reps", func(p *Plan) { n := -1; p.Exercises[0].Reps = &n }},
		{"negative weight", func(p *Plan) { w := -0.5; p.Exercises[0].Weight = &w }},
		{"published before created", func(p *Plan) { p.PublishedAt = p.CreatedAt.Add(-time.Minute) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			p.Exercises = []Exercise{valid.Exercises[0]}
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestPlanValidate_OptionalFieldsMayBeAbsent(t *testing.T) {
	p := Plan{
		ID:        "p1",
		Name:      "Mobility",
		Exercises: []Exercise{{Name: "Stretch"}},
	}
	assert.NoError(t, p.Validate())
}

// internal/domain/role.go
package domain

// Role distinguishes the two sides of the coach/trainee relationship.
// Roles arrive in the auth token claims; this subsystem never assigns them.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleTrainee Role = "trainee"
)

// internal/domain/directory.go
package domain

import "time"

// DirectoryEntry is one half of the coach directory's bidirectional index.
// The forward document is keyed by NameKey (trimmed, lower-cased display
// name), the reverse document by CoachID. Both halves carry the same
// payload and must agree on DisplayName after a successful upsert.
type DirectoryEntry struct {
	CoachID     string    `json:"coachId"`
	DisplayName string    `json:"displayName"`
	NameKey     string    `json:"displayNameLower"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// internal/domain/plan_item.go
package domain

// RemotePlanItem wraps a received plan with distribution metadata for the
// client-side merged view. SourceCoachID is empty for locally authored
// plans; SourceCoachName is resolved lazily from the directory and may stay
// blank. IsInbox records which channel delivered the most recent copy of
// the plan: true for the targeted inbox, false for the broadcast channel.
type RemotePlanItem struct {
	Plan            Plan   `json:"plan"`
	SourceCoachID   string `json:"sourceCoachId,omitempty"`
	SourceCoachName string `json:"sourceCoachName,omitempty"`
	IsInbox         bool   `json:"isInbox"`
}

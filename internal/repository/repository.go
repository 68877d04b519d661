package repository

import (
	"alcyxob/coach-sync/internal/domain"
	"context"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Batch is one emission of a live query subscription. The store delivers
// the entire current result set on every change, not diffs. A batch with a
// non-nil Err is the final emission: the stream does not recover and the
// caller must re-subscribe.
type Batch[T any] struct {
	Items []T
	Err   error
}

// DirectoryRepository stores the bidirectional coach directory index.
// Forward documents are keyed by the normalized display name, reverse
// documents by coach id. The two upserts are independent writes.
type DirectoryRepository interface {
	UpsertForward(ctx context.Context, entry *domain.DirectoryEntry) error
	UpsertReverse(ctx context.Context, entry *domain.DirectoryEntry) error
	FindByNameKey(ctx context.Context, nameKey string) (*domain.DirectoryEntry, error)
	FindByCoachID(ctx context.Context, coachID string) (*domain.DirectoryEntry, error)
}

// MembershipRepository stores which trainees joined which coaches.
// Upsert is keyed by the (traineeId, coachId) pair and is idempotent.
type MembershipRepository interface {
	Upsert(ctx context.Context, m *domain.Membership) error
	ListCoachIDs(ctx context.Context, traineeID string) ([]string, error)
	ListTrainees(ctx context.Context, coachID string) ([]domain.TraineeRef, error)
	WatchCoachIDs(ctx context.Context, traineeID string) (<-chan Batch[string], error)
	WatchTrainees(ctx context.Context, coachID string) (<-chan Batch[domain.TraineeRef], error)
}

// PlanRepository stores distributed plans in two channels: the coach's
// broadcast channel and per-trainee inboxes. Upserts are merge-writes —
// fields absent from the payload are left untouched in the stored document.
type PlanRepository interface {
	UpsertBroadcast(ctx context.Context, plan *domain.Plan) error
	UpsertInbox(ctx context.Context, traineeID string, plan *domain.Plan) error
	DeleteInbox(ctx context.Context, traineeID, planID string) error
	ListBroadcast(ctx context.Context, coachID string) ([]domain.Plan, error)
	ListInbox(ctx context.Context, traineeID string) ([]domain.Plan, error)
	WatchBroadcast(ctx context.Context, coachID string) (<-chan Batch[domain.Plan], error)
	WatchInbox(ctx context.Context, traineeID string) (<-chan Batch[domain.Plan], error)
}

// CompletionRepository stores trainee completion reports. Events are
// append-only; there is no update or delete. The coach-scoped query spans
// all of the coach's trainees.
type CompletionRepository interface {
	Create(ctx context.Context, event *domain.CompletionEvent) error
	ListByCoach(ctx context.Context, coachID string) ([]domain.CompletionEvent, error)
	WatchByCoach(ctx context.Context, coachID string) (<-chan Batch[domain.CompletionEvent], error)
}

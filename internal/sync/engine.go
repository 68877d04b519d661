// internal/sync/engine.go
package sync

import (
	"alcyxob/coach-sync/internal/domain"
	"alcyxob/coach-sync/internal/repository"
	"context"
	"errors"

	"go.uber.org/zap"
)

// NameResolver is the slice of the directory the engine needs to decorate
// received plans with a friendly coach name.
type NameResolver interface {
	ResolveNameByID(ctx context.Context, coachID string) (string, error)
}

// Engine folds the two live plan streams for one viewing context — the
// broadcast channel of coachID and the inbox of traineeID — into a single
// Cache. It is the cache's single logical owner: all mutation happens on
// the Run goroutine, so batches from the two streams are serialized even
// though the store guarantees no ordering across them.
//
// The store emits full result sets, not diffs, so removals are detected by
// comparing consecutive snapshots per stream: an id seen previously but
// absent now was deleted remotely (coach retraction on broadcast,
// mark-as-read on inbox). A disappeared id is only evicted when the cached
// entry still carries that stream's channel flag AND the other stream's
// last snapshot no longer holds it; if the other channel still holds the
// plan, the entry is re-flagged to that channel instead of evicted.
type Engine struct {
	cache *Cache
	plans repository.PlanRepository
	names NameResolver
	log   *zap.Logger

	coachID   string
	traineeID string

	seenBroadcast map[string]struct{}
	seenInbox     map[string]struct{}
	coachNames    map[string]string // memoized directory lookups
}

// NewEngine creates a reconciliation engine for one coach/trainee viewing
// context. names may be nil, in which case received plans keep a blank
// display name.
func NewEngine(
	plans repository.PlanRepository,
	names NameResolver,
	logger *zap.Logger,
	coachID, traineeID string,
) (*Engine, error) {
	if coachID == "" || traineeID == "" {
		return nil, errors.New("engine requires coachID and traineeID")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cache:         NewCache(),
		plans:         plans,
		names:         names,
		log:           logger,
		coachID:       coachID,
		traineeID:     traineeID,
		seenBroadcast: make(map[string]struct{}),
		seenInbox:     make(map[string]struct{}),
		coachNames:    make(map[string]string),
	}, nil
}

// Cache exposes the merged view. Callers read and subscribe; mutation is
// the engine's job.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Run subscribes to both streams and processes batches until ctx is
// cancelled or both streams have terminated. Stream failures are logged
// and terminate that stream only; there is no automatic re-subscription.
func (e *Engine) Run(ctx context.Context) error {
	broadcast, err := e.plans.WatchBroadcast(ctx, e.coachID)
	if err != nil {
		return err
	}
	inbox, err := e.plans.WatchInbox(ctx, e.traineeID)
	if err != nil {
		return err
	}

	for broadcast != nil || inbox != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-broadcast:
			if !ok {
				broadcast = nil
				continue
			}
			if batch.Err != nil {
				e.log.Warn("broadcast stream failed", zap.String("coachId", e.coachID), zap.Error(batch.Err))
				broadcast = nil
				continue
			}
			e.applyBroadcast(ctx, batch.Items)
		case batch, ok := <-inbox:
			if !ok {
				inbox = nil
				continue
			}
			if batch.Err != nil {
				e.log.Warn("inbox stream failed", zap.String("traineeId", e.traineeID), zap.Error(batch.Err))
				inbox = nil
				continue
			}
			e.applyInbox(ctx, batch.Items)
		}
	}
	return nil
}

// applyBroadcast merges one full broadcast snapshot and evicts plans the
// coach has since deleted.
func (e *Engine) applyBroadcast(ctx context.Context, plans []domain.Plan) {
	e.cache.MergeBroadcast(e.coachID, plans)
	e.cache.SetSourceName(e.coachID, e.resolveName(ctx, e.coachID))

	current := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		current[p.ID] = struct{}{}
	}
	e.evictMissing(e.seenBroadcast, current, e.seenInbox, false)
	e.seenBroadcast = current
}

// applyInbox merges one full inbox snapshot and evicts plans the trainee
// has marked as read (or the coach has retracted).
func (e *Engine) applyInbox(ctx context.Context, plans []domain.Plan) {
	items := make([]domain.RemotePlanItem, len(plans))
	for i, p := range plans {
		items[i] = domain.RemotePlanItem{
			Plan:            p,
			SourceCoachID:   p.CoachID,
			SourceCoachName: e.resolveName(ctx, p.CoachID),
			IsInbox:         true,
		}
	}
	e.cache.MergeInbox(items)

	current := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		current[p.ID] = struct{}{}
	}
	e.evictMissing(e.seenInbox, current, e.seenBroadcast, true)
	e.seenInbox = current
}

// evictMissing handles ids that disappeared from a stream's snapshot. An
// entry owned by another channel is left alone. An entry this stream owns
// is evicted only when the other stream's last snapshot no longer holds
// the id; when it does, only this channel's copy was withdrawn, so the
// entry is handed back to the other channel instead of evicted.
func (e *Engine) evictMissing(previous, current, otherSeen map[string]struct{}, isInbox bool) {
	var gone []string
	for id := range previous {
		if _, still := current[id]; still {
			continue
		}
		item, ok := e.cache.Get(id)
		if !ok || item.IsInbox != isInbox {
			continue
		}
		if _, held := otherSeen[id]; held {
			e.cache.SetChannel(id, !isInbox)
			continue
		}
		gone = append(gone, id)
	}
	if len(gone) > 0 {
		e.cache.RemoveByIDs(gone)
	}
}

// resolveName memoizes directory lookups per coach id for the lifetime of
// the engine.
func (e *Engine) resolveName(ctx context.Context, coachID string) string {
	if e.names == nil || coachID == "" {
		return ""
	}
	if name, ok := e.coachNames[coachID]; ok {
		return name
	}
	name, err := e.names.ResolveNameByID(ctx, coachID)
	if err != nil {
		e.log.Debug("coach name resolution failed", zap.String("coachId", coachID), zap.Error(err))
		return ""
	}
	e.coachNames[coachID] = name
	return name
}

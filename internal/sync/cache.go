// internal/sync/cache.go
package sync

import (
	"alcyxob/coach-sync/internal/domain"
	"sync"
)

// Cache is the client-side reconciliation map for distributed plans: an
// ordered mapping of plan id to RemotePlanItem fed by the broadcast and
// inbox notification streams. Insertion order is preserved; replacing an
// existing id updates it in place and does not move it to the end, which
// keeps the UI ordering stable across republishes.
//
// A plan observed on both channels collapses to a single entry whose
// IsInbox flag reflects whichever notification arrived last
// (last-observed-channel wins). Cross-stream ordering is not guaranteed by
// the store, so the flag is arrival-order dependent; callers that need a
// fixed channel precedence must not rely on it.
//
// Mutations are expected to arrive serialized from one owner (the sync
// engine's delivery loop); the internal mutex additionally makes reads
// safe from any goroutine, and Snapshot/Get return copies so readers
// always see a consistent point-in-time view.
type Cache struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.RemotePlanItem

	subMu   sync.Mutex
	subs    map[int]chan []domain.RemotePlanItem
	nextSub int
}

// NewCache creates an empty plan cache.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]domain.RemotePlanItem),
		subs:  make(map[int]chan []domain.RemotePlanItem),
	}
}

// MergeBroadcast upserts one batch from the coach's broadcast channel.
// Re-applying the same batch is a no-op beyond the first application.
func (c *Cache) MergeBroadcast(coachID string, plans []domain.Plan) {
	c.mu.Lock()
	for _, plan := range plans {
		c.upsertLocked(domain.RemotePlanItem{
			Plan:          plan,
			SourceCoachID: coachID,
			IsInbox:       false,
		})
	}
	c.mu.Unlock()
	c.publish()
}

// MergeInbox upserts one batch from the trainee's inbox. The inbox flag is
// forced on every item regardless of what the sender set.
func (c *Cache) MergeInbox(items []domain.RemotePlanItem) {
	c.mu.Lock()
	for _, item := range items {
		item.IsInbox = true
		c.upsertLocked(item)
	}
	c.mu.Unlock()
	c.publish()
}

// upsertLocked replaces in place when the id exists, appends otherwise.
func (c *Cache) upsertLocked(item domain.RemotePlanItem) {
	id := item.Plan.ID
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

// SetSourceName back-fills the resolved coach display name on every entry
// from the given coach. The name is advisory metadata: order and channel
// flags are untouched, and entries already carrying the name are skipped.
func (c *Cache) SetSourceName(coachID, name string) {
	if coachID == "" || name == "" {
		return
	}
	c.mu.Lock()
	changed := false
	for id, item := range c.items {
		if item.SourceCoachID != coachID || item.SourceCoachName == name {
			continue
		}
		item.SourceCoachName = name
		c.items[id] = item
		changed = true
	}
	c.mu.Unlock()
	if changed {
		c.publish()
	}
}

// SetChannel re-flags the delivery channel of an existing entry in place.
// Order and the rest of the payload are untouched. Absent ids and no-op
// flips publish nothing.
func (c *Cache) SetChannel(planID string, isInbox bool) {
	c.mu.Lock()
	item, ok := c.items[planID]
	if !ok || item.IsInbox == isInbox {
		c.mu.Unlock()
		return
	}
	item.IsInbox = isInbox
	c.items[planID] = item
	c.mu.Unlock()
	c.publish()
}

// RemoveByID purges one plan from the map. Removing an absent id is a
// no-op, not an error.
func (c *Cache) RemoveByID(planID string) {
	c.RemoveByIDs([]string{planID})
}

// RemoveByIDs purges a set of plans from the map, skipping absent ids.
func (c *Cache) RemoveByIDs(planIDs []string) {
	c.mu.Lock()
	removed := false
	for _, id := range planIDs {
		if _, exists := c.items[id]; !exists {
			continue
		}
		delete(c.items, id)
		for i, ordered := range c.order {
			if ordered == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		removed = true
	}
	c.mu.Unlock()
	if removed {
		c.publish()
	}
}

// Get returns the cached item for a plan id, if present.
func (c *Cache) Get(planID string) (domain.RemotePlanItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[planID]
	return item, ok
}

// Len returns the number of cached plans.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear empties the map. Used on sign-out.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.order = nil
	c.items = make(map[string]domain.RemotePlanItem)
	c.mu.Unlock()
	c.publish()
}

// Snapshot returns the current items in map order. The slice is a copy;
// later mutations do not affect it.
func (c *Cache) Snapshot() []domain.RemotePlanItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.RemotePlanItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Subscribe registers a live view of the merged list. The latest snapshot
// is delivered immediately, then one snapshot per change. A slow consumer
// only ever lags by one emission: pending snapshots are coalesced so the
// newest wins. The returned cancel function must be called when the
// subscription is no longer needed.
func (c *Cache) Subscribe() (<-chan []domain.RemotePlanItem, func()) {
	ch := make(chan []domain.RemotePlanItem, 1)
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	// Initial delivery happens under subMu so a concurrent publish cannot
	// fill the buffer first.
	ch <- c.Snapshot()
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
		c.subMu.Unlock()
	}
	return ch, cancel
}

// publish pushes the current snapshot to every subscriber, replacing any
// undelivered previous snapshot.
func (c *Cache) publish() {
	snap := c.Snapshot()
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale pending snapshot, keep the newest.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

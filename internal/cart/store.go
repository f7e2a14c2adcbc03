package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// StorageKey is the fixed slot key the cart persists under.
const StorageKey = "cart"

// Store owns the cart state for one running instance. All mutation goes
// through Dispatch; persistence and cross-instance replication are effects
// layered on top of the pure transition function, never part of it.
//
// In-memory state is the authority: a failed slot write is logged and
// dropped, never rolled back or surfaced to callers.
type Store struct {
	slot Slot
	log  *zap.Logger

	mu    sync.Mutex
	state State

	stopWatch func()
}

// NewStore hydrates once from the slot (best effort) and subscribes to
// change notifications for the storage key. Call Close to release the
// subscription when the session ends.
func NewStore(slot Slot, log *zap.Logger) *Store {
	s := &Store{slot: slot, log: log}

	s.hydrate()

	stop, err := slot.Watch(context.Background(), StorageKey, s.onSlotChange)
	if err != nil {
		s.log.Warn("cart change notifications unavailable", zap.Error(err))
	} else {
		s.stopWatch = stop
	}

	return s
}

func (s *Store) Close() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
}

// Dispatch applies the action as one atomic transition, then persists the
// item list if the action can have changed it.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Apply(s.state, a)
	items := append([]Item(nil), s.state.Items...)
	s.mu.Unlock()

	if !mutatesItems(a) {
		return
	}
	s.persist(items)
}

// Snapshot returns a copy of the current state. The item slice is owned by
// the caller.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Items: append([]Item(nil), s.state.Items...),
		Open:  s.state.Open,
	}
}

// TotalPrice recomputes the cart subtotal from current items.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalPrice()
}

// TotalItems recomputes the total unit count from current items.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

func (s *Store) hydrate() {
	data, ok, err := s.slot.Load(context.Background(), StorageKey)
	if err != nil {
		s.log.Warn("cart load failed, starting empty", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	items, err := decodeItems(data)
	if err != nil {
		s.log.Warn("persisted cart malformed, starting empty", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	s.mu.Lock()
	s.state = Apply(s.state, Hydrate{Items: items})
	s.mu.Unlock()
}

// onSlotChange applies a value written by another store instance. Last
// write wins; a malformed payload is ignored.
func (s *Store) onSlotChange(value []byte) {
	items, err := decodeItems(value)
	if err != nil {
		s.log.Warn("ignoring malformed cart notification", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.state = Apply(s.state, Hydrate{Items: items})
	s.mu.Unlock()
}

func (s *Store) persist(items []Item) {
	if items == nil {
		items = []Item{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("cart encode failed", zap.Error(err))
		return
	}

	if err := s.slot.Save(context.Background(), StorageKey, data); err != nil {
		s.log.Warn("cart save failed", zap.Error(err))
	}
}

// decodeItems parses a persisted item array. Entries with a non-positive
// quantity are dropped so a corrupt value can never violate the quantity
// invariant in memory.
func decodeItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	out := items[:0]
	for _, it := range items {
		if it.Quantity >= 1 {
			out = append(out, it)
		}
	}
	return out, nil
}

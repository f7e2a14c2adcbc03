package cart

import (
	"context"
	"sync"
)

// MemSlot keeps values in process memory. It backs deployments without
// Redis and doubles as the test slot; stores sharing one MemSlot observe
// each other's writes through Watch.
type MemSlot struct {
	mu       sync.Mutex
	values   map[string][]byte
	watchers map[string]map[int]func([]byte)
	nextID   int
}

func NewMemSlot() *MemSlot {
	return &MemSlot{
		values:   map[string][]byte{},
		watchers: map[string]map[int]func([]byte){},
	}
}

func (s *MemSlot) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemSlot) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	fns := make([]func([]byte), 0, len(s.watchers[key]))
	for _, fn := range s.watchers[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// Callbacks run outside the slot lock; a watcher may Load or Save.
	for _, fn := range fns {
		fn(append([]byte(nil), value...))
	}
	return nil
}

func (s *MemSlot) Watch(_ context.Context, key string, fn func([]byte)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	if s.watchers[key] == nil {
		s.watchers[key] = map[int]func([]byte){}
	}
	s.watchers[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[key], id)
	}, nil
}

package cart

import "context"

// Slot is a durable key-value cell with change notifications. Watch delivers
// the new raw value after a write by any holder of the slot; the writer may
// or may not receive its own write, and stores must tolerate both.
type Slot interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Watch(ctx context.Context, key string, fn func(value []byte)) (stop func(), err error)
}

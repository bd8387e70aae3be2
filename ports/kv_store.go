package ports

import "context"

// KeyValueStore is the persistence boundary of the dataset store.
//
// Get returns core.ErrNotFound for an absent key. Set returns an error wrapping
// core.ErrQuotaExceeded when the write would exceed the backend's size quota;
// in that case the previous value is left untouched.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

package ports

import "context"

type KeyValue struct {
	Key   string
	Value []byte
}

// Storage is the durable record store capability the engine assumes:
// transactional at single-record granularity, nothing more.
type Storage interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]KeyValue, error)
	Close() error
}

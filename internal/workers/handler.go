package workers

import "context"

// WorkerHandler turns one raw message into a T and applies it.
type WorkerHandler[T any] interface {
	Type() string
	Decode(key, value []byte) (*T, error)
	Apply(ctx context.Context, item *T) error
}

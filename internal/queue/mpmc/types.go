package mpmc

import "sync/atomic"

type cell[T any] struct {
	seq  atomic.Uint64
	data T
}

// Fixed capacity lock-free ring. Capacity is always a power of two.
type Queue[T any] struct {
	Namespace []string
	Size      int
	mask      uint64
	buf       []cell[T]
	head      atomic.Uint64
	tail      atomic.Uint64
	notEmpty  chan struct{}
	Metrics   MetricStorage
}

type MetricStorage struct {
	Depth atomic.Uint64 // Current items in queue

	PushAttempts atomic.Uint64 // every Push call
	PushFull     atomic.Uint64 // Push rejected because queue was full
	PopSuccess   atomic.Uint64
	PopWaits     atomic.Uint64 // Pop blocked on an empty queue
}

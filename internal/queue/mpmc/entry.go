// Multi-producer Multi-Consumer lock-free ring buffer queue with power-of-two capacity
package mpmc

import (
	"context"
	"fmt"
	"loracom/internal/atomics"
	"loracom/internal/global"
	"runtime"
)

// Creates a queue of at least the requested capacity (rounded up to a power of two).
// itemSize is the approximate memory cost of one entry and caps capacity on small hosts.
func New[T any](namespace []string, requested int, itemSize uint64) (queue *Queue[T], err error) {
	if requested < 2 {
		err = fmt.Errorf("capacity must be greater than or equal to 2")
		return
	}

	capacity := clampCapacity(nextPowerOfTwo(requested), itemSize)

	buf := make([]cell[T], capacity)
	for i := range buf {
		buf[i].seq.Store(uint64(i))
	}

	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)
	ns = append(ns, global.NSQueue)

	queue = &Queue[T]{
		Namespace: ns,
		Size:      capacity,
		mask:      uint64(capacity - 1),
		buf:       buf,
		notEmpty:  make(chan struct{}, 1),
	}
	return
}

// Attempts to write an element (non success = queue full)
func (queue *Queue[T]) Push(value T) (success bool) {
	queue.Metrics.PushAttempts.Add(1)

	var pos uint64
	var slot *cell[T]
	for {
		pos = queue.tail.Load()
		slot = &queue.buf[pos&queue.mask]
		seq := slot.seq.Load()

		if seq == pos {
			if queue.tail.CompareAndSwap(pos, pos+1) {
				break
			}
		} else if seq < pos {
			queue.Metrics.PushFull.Add(1)
			return
		} else {
			runtime.Gosched()
		}
	}

	queue.Metrics.Depth.Add(1)
	slot.data = value
	slot.seq.Store(pos + 1)

	// Wake one blocked consumer, non-blocking
	select {
	case queue.notEmpty <- struct{}{}:
	default:
	}

	success = true
	return
}

// Reads an element without blocking. Returns false if empty.
func (queue *Queue[T]) TryPop() (out T, success bool) {
	for {
		pos := queue.head.Load()
		slot := &queue.buf[pos&queue.mask]
		seq := slot.seq.Load()

		switch {
		case seq == pos+1:
			if !queue.head.CompareAndSwap(pos, pos+1) {
				continue
			}
			out = slot.data
			var zero T
			slot.data = zero
			slot.seq.Store(pos + queue.mask + 1)

			queue.Metrics.PopSuccess.Add(1)
			atomics.SaturatingSub(&queue.Metrics.Depth, 1)
			success = true
			return
		case seq < pos+1:
			return
		default:
			// Another consumer ahead of us
			runtime.Gosched()
		}
	}
}

// Blocks until an element is available or ctx is done
func (queue *Queue[T]) Pop(ctx context.Context) (out T, success bool) {
	for {
		out, success = queue.TryPop()
		if success {
			return
		}

		queue.Metrics.PopWaits.Add(1)
		select {
		case <-ctx.Done():
			return
		case <-queue.notEmpty:
		}

		// Pass the wake on if more remain for other consumers
		if queue.Len() > 1 {
			select {
			case queue.notEmpty <- struct{}{}:
			default:
			}
		}
	}
}

// Current number of queued items
func (queue *Queue[T]) Len() (depth int) {
	depth = int(queue.Metrics.Depth.Load())
	return
}

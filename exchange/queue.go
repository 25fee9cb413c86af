package exchange

import (
	"context"
	"sync"
	"time"
)

// eventQueue is the unbounded FIFO feeding the reconciliation pipeline. Both
// trade notifications and order status updates travel through it, so a single
// consumer sees them in submission order. A slow consumer delays processing
// but never drops an event.
type eventQueue struct {
	mu    sync.Mutex
	items []interface{}
	busy  bool
	wake  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{wake: make(chan struct{}, 1)}
}

func (q *eventQueue) push(item interface{}) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop blocks until an item is available or ctx is canceled. The caller must
// call taskDone once the item has been processed.
func (q *eventQueue) pop(ctx context.Context) (interface{}, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.busy = true
			q.mu.Unlock()
			return item, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-q.wake:
		}
	}
}

func (q *eventQueue) taskDone() {
	q.mu.Lock()
	q.busy = false
	q.mu.Unlock()
}

// drain blocks until the queue is empty and no item is being processed.
func (q *eventQueue) drain(ctx context.Context) error {
	for {
		q.mu.Lock()
		idle := len(q.items) == 0 && !q.busy
		q.mu.Unlock()
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

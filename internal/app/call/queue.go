package call

import (
	"context"
	"sync"
)

// eventQueue is unbounded so pion and timer callbacks never block on the
// loop.
type eventQueue struct {
	mu    sync.Mutex
	items []event
	ready chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(ev event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) tryPop() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return event{}, false
	}
	ev := q.items[0]
	q.items[0] = event{}
	q.items = q.items[1:]
	return ev, true
}

func (q *eventQueue) pop(ctx context.Context) (event, bool) {
	for {
		if ev, ok := q.tryPop(); ok {
			return ev, true
		}
		select {
		case <-ctx.Done():
			return event{}, false
		case <-q.ready:
		}
	}
}

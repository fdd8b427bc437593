package interact

import (
	"sync"
	"time"
)

// Handle identifies a pending tick request. The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks once on the next display frame.
type Scheduler interface {
	RequestTick(fn func(now time.Time)) Handle
	Cancel(h Handle)
}

// Queue is a Scheduler drained by the host once per frame through Fire.
type Queue struct {
	mu    sync.Mutex
	next  Handle
	order []Handle
	live  map[Handle]func(time.Time)
}

var _ Scheduler = (*Queue)(nil)

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{live: make(map[Handle]func(time.Time))}
}

// RequestTick queues fn for the next Fire.
func (q *Queue) RequestTick(fn func(now time.Time)) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	h := q.next
	q.order = append(q.order, h)
	q.live[h] = fn
	return h
}

// Cancel drops a pending request. Unknown handles are ignored.
func (q *Queue) Cancel(h Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.live, h)
}

// Pending reports how many requests are waiting.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.live)
}

// Fire runs every request queued before the call, in request order, and
// reports how many ran. Requests made by the callbacks wait for the next Fire.
func (q *Queue) Fire(now time.Time) int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, h := range batch {
		q.mu.Lock()
		fn, ok := q.live[h]
		delete(q.live, h)
		q.mu.Unlock()
		if !ok {
			continue
		}
		fn(now)
		ran++
	}
	return ran
}

package notify

import (
	"sync"
	"wxhm/internal/models"
)

// eventQueue is an unbounded FIFO. Push never blocks; Pop blocks until an
// event is available or the queue is closed.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []models.NotificationEvent
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends e and reports whether the queue accepted it.
func (q *eventQueue) Push(e models.NotificationEvent) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, e)
	q.mu.Unlock()
	q.cond.Signal()
	return true
}

func (q *eventQueue) Pop() (models.NotificationEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return models.NotificationEvent{}, false
	}
	e := q.items[0]
	q.items[0] = models.NotificationEvent{}
	q.items = q.items[1:]
	return e, true
}

// Close wakes every waiter and discards pending events, returning how many
// were dropped.
func (q *eventQueue) Close() int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	q.closed = true
	dropped := len(q.items)
	q.items = nil
	q.mu.Unlock()
	q.cond.Broadcast()
	return dropped
}

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

package retention

import (
	"container/heap"
	"sync"
	"time"
)

// delayQueue releases requests once their absolute due time has passed,
// earliest first. Equal due times are broken by request key so the release
// order is deterministic.
type delayQueue struct {
	mu     sync.Mutex
	items  requestHeap
	closed bool
	wake   chan struct{}
}

func newDelayQueue() *delayQueue {
	return &delayQueue{wake: make(chan struct{}, 1)}
}

// push schedules a request and reports whether the queue accepted it. A
// closed queue refuses the push: its drain has already run, so anything
// slipped in afterwards would never flush.
func (q *delayQueue) push(r *request) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	heap.Push(&q.items, r)
	q.mu.Unlock()
	q.notify()
	return true
}

func (q *delayQueue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// take blocks until the earliest request is due and returns it. It returns
// false once the queue is closed; requests still held at that point are
// recovered through drain.
func (q *delayQueue) take() (*request, bool) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		wait := time.Duration(-1)
		if len(q.items) > 0 {
			now := time.Now()
			if due := q.items[0].due; !due.After(now) {
				r := heap.Pop(&q.items).(*request)
				q.mu.Unlock()
				return r, true
			} else {
				wait = due.Sub(now)
			}
		}
		q.mu.Unlock()

		if wait < 0 {
			<-q.wake
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-q.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (q *delayQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}

// drain removes and returns every queued request, due or not, in release
// order.
func (q *delayQueue) drain() []*request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*request, 0, len(q.items))
	for len(q.items) > 0 {
		out = append(out, heap.Pop(&q.items).(*request))
	}
	return out
}

type requestHeap []*request

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if !h[i].due.Equal(h[j].due) {
		return h[i].due.Before(h[j].due)
	}
	return h[i].key < h[j].key
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) { *h = append(*h, x.(*request)) }

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return r
}

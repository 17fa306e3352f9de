// Package controller keeps content stores in step with changes made by other
// contexts: slot watches feed a de-duplicating work queue whose worker
// reloads the matching store.
package controller

import (
	"sync"
	"time"
)

// workItem is a queued key with its retry schedule.
type workItem struct {
	key       string
	nextRetry time.Time
}

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// WorkQueue is a de-duplicating work queue with exponential backoff.
// A key added while it is being processed is queued again once Done is
// called, so a burst of changes collapses into at most one extra pass.
type WorkQueue struct {
	mu         sync.Mutex
	items      []workItem
	dirty      map[string]bool // added since it was last handed out
	processing map[string]bool
	retries    map[string]int
	notify     chan struct{}
	closed     bool
}

// NewWorkQueue creates an empty queue.
func NewWorkQueue() *WorkQueue {
	return &WorkQueue{
		dirty:      make(map[string]bool),
		processing: make(map[string]bool),
		retries:    make(map[string]int),
		notify:     make(chan struct{}, 1),
	}
}

// Add enqueues key unless it is already waiting.
func (q *WorkQueue) Add(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.dirty[key] = true
	if q.processing[key] || q.queuedLocked(key) {
		return
	}

	q.items = append(q.items, workItem{key: key})
	q.signalLocked()
}

// Get returns the next ready key. It blocks until one is available and
// returns ("", false) once the queue is closed and drained.
func (q *WorkQueue) Get() (string, bool) {
	for {
		q.mu.Lock()

		if q.closed && len(q.items) == 0 {
			q.mu.Unlock()
			return "", false
		}

		now := time.Now()
		for i, item := range q.items {
			if !now.Before(item.nextRetry) {
				q.items = append(q.items[:i], q.items[i+1:]...)
				delete(q.dirty, item.key)
				q.processing[item.key] = true
				q.mu.Unlock()
				return item.key, true
			}
		}

		var wait time.Duration
		if len(q.items) > 0 {
			earliest := q.items[0].nextRetry
			for _, item := range q.items[1:] {
				if item.nextRetry.Before(earliest) {
					earliest = item.nextRetry
				}
			}
			wait = time.Until(earliest)
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			// Remaining items are backing off; drop them.
			q.mu.Lock()
			q.items = nil
			q.mu.Unlock()
			continue
		}

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-q.notify:
				timer.Stop()
			case <-timer.C:
			}
		} else {
			<-q.notify
		}
	}
}

// Done marks key as processed. If it was added again meanwhile it goes back
// on the queue.
func (q *WorkQueue) Done(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.processing, key)
	if q.closed || !q.dirty[key] || q.queuedLocked(key) {
		return
	}
	q.items = append(q.items, workItem{key: key})
	q.signalLocked()
}

// Requeue schedules key again with exponential backoff (100ms, 200ms, ...,
// capped at 10s).
func (q *WorkQueue) Requeue(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.processing, key)
	if q.closed {
		return
	}

	q.retries[key]++
	backoff := initialBackoff << (q.retries[key] - 1)
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}

	for i, item := range q.items {
		if item.key == key {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	q.items = append(q.items, workItem{key: key, nextRetry: time.Now().Add(backoff)})
	q.signalLocked()
}

// Forget clears the retry count for key after a successful pass.
func (q *WorkQueue) Forget(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.retries, key)
}

// Retries returns how many times key has been requeued since the last Forget.
func (q *WorkQueue) Retries(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.retries[key]
}

// Len returns the number of queued keys.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close shuts the queue down, unblocking pending Get calls.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.notify)
}

func (q *WorkQueue) queuedLocked(key string) bool {
	for _, item := range q.items {
		if item.key == key {
			return true
		}
	}
	return false
}

func (q *WorkQueue) signalLocked() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

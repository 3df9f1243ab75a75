package session

import "sync"

// Locker serializes state transitions per session id. A transition that
// spans a suspension point (the crisis judge call) holds its session's slot
// for the full duration; competing inputs are rejected rather than queued,
// so the state machine never sees two in-flight transitions on the same
// session.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocker returns an empty locker.
func NewLocker() *Locker {
	return &Locker{held: map[string]bool{}}
}

// TryAcquire claims the session's slot. It returns false when a transition
// for the same session is already in flight.
func (l *Locker) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] {
		return false
	}
	l.held[id] = true
	return true
}

// Release frees the session's slot.
func (l *Locker) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}

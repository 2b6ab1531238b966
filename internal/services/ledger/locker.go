package ledger

import (
	"context"
	"sync"

	apperrors "fintrack/internal/errors"
)

// UserLocker serializes work per user id. Waiters for the same user are
// granted the lock in arrival order; different users never contend. A slot
// exists only while someone holds or waits for it.
type UserLocker struct {
	mu        sync.Mutex
	slots     map[string]*lockSlot
	maxQueued int
}

// lockSlot's queue head holds the lock; the rest wait in order.
type lockSlot struct {
	queue []*lockWaiter
}

type lockWaiter struct {
	ready chan struct{}
}

// NewUserLocker creates a locker. maxQueued bounds how many callers may wait
// behind the holder of one user's slot; zero or less means unbounded.
func NewUserLocker(maxQueued int) *UserLocker {
	return &UserLocker{
		slots:     make(map[string]*lockSlot),
		maxQueued: maxQueued,
	}
}

// Acquire blocks until the caller holds userID's slot, and returns the
// function that releases it. If ctx ends first the caller leaves the queue
// and ctx.Err() is returned. Release is idempotent.
func (l *UserLocker) Acquire(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = &lockSlot{}
		l.slots[userID] = slot
	}
	if l.maxQueued > 0 && len(slot.queue) > l.maxQueued {
		l.mu.Unlock()
		return nil, apperrors.Wrapf(apperrors.ErrLockQueueFull, "user %s", userID)
	}

	w := &lockWaiter{ready: make(chan struct{})}
	slot.queue = append(slot.queue, w)
	if len(slot.queue) == 1 {
		close(w.ready)
	}
	l.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { l.release(userID, w) })
	}

	select {
	case <-w.ready:
		return release, nil
	case <-ctx.Done():
	}

	l.mu.Lock()
	select {
	case <-w.ready:
		// Granted while we were giving up; hand it on.
		l.mu.Unlock()
		release()
	default:
		l.remove(userID, w)
		l.mu.Unlock()
	}
	return nil, ctx.Err()
}

func (l *UserLocker) release(userID string, w *lockWaiter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[userID]
	if !ok || len(slot.queue) == 0 || slot.queue[0] != w {
		return
	}

	slot.queue[0] = nil
	slot.queue = slot.queue[1:]
	if len(slot.queue) == 0 {
		delete(l.slots, userID)
		return
	}
	close(slot.queue[0].ready)
}

// remove drops a waiter that was never granted. Caller holds l.mu.
func (l *UserLocker) remove(userID string, w *lockWaiter) {
	slot, ok := l.slots[userID]
	if !ok {
		return
	}
	for i, q := range slot.queue {
		if q == w {
			slot.queue = append(slot.queue[:i], slot.queue[i+1:]...)
			break
		}
	}
	if len(slot.queue) == 0 {
		delete(l.slots, userID)
	}
}

// ActiveSlots reports how many users currently hold or wait for a slot.
func (l *UserLocker) ActiveSlots() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// Queued reports how many callers hold or wait for userID's slot.
func (l *UserLocker) Queued(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slot, ok := l.slots[userID]; ok {
		return len(slot.queue)
	}
	return 0
}

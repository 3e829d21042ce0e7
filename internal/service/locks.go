package service

import (
	"sort"
	"sync"
	"time"

	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/metrics"
)

// lockManager hands out one lock per entity id so concurrent operations
// touching the same vehicle, driver or route are serialized. Locks are
// always taken in sorted id order, which rules out deadlock between
// operations that touch overlapping id sets.
type lockManager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockManager() *lockManager {
	return &lockManager{locks: make(map[string]chan struct{})}
}

func (m *lockManager) lockFor(id string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[id] = l
	}
	return l
}

// acquire takes the locks for every id, in sorted order, each within the
// timeout. On timeout it releases everything taken so far and returns a
// retryable fault. The returned release function must be called exactly
// once after commit.
func (m *lockManager) acquire(timeout time.Duration, ids ...string) (func(), error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	held := make([]chan struct{}, 0, len(unique))
	release := func() {
		// Release in reverse acquisition order.
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for _, id := range unique {
		l := m.lockFor(id)
		select {
		case l <- struct{}{}:
			held = append(held, l)
		case <-timer.C:
			release()
			metrics.LockTimeouts.Inc()
			return nil, faults.Retryable("timed out waiting for lock on entity %s", id)
		}
	}
	return release, nil
}

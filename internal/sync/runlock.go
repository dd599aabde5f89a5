package sync

import "sync"

// RunLock guarantees at most one sync run per process. Acquire never
// blocks: a second caller is told the run is busy and backs off.
type RunLock struct {
	mu sync.Mutex
}

func NewRunLock() *RunLock {
	return &RunLock{}
}

func (l *RunLock) Acquire() bool {
	return l.mu.TryLock()
}

func (l *RunLock) Release() {
	l.mu.Unlock()
}

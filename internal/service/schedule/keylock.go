package schedule

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// keyLock serializes mutations per (user, schedule) key. Entries are kept for
// the life of the process; the key space is bounded by active user/schedule
// pairs.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given key and returns its unlock func.
func (l *keyLock) acquire(userID uuid.UUID, scheduleID int64) func() {
	key := fmt.Sprintf("%s|%d", userID, scheduleID)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

package appointment

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// dayLocks serializes check-then-write per (doctor, calendar day) so two
// concurrent requests for the same slot cannot both pass the overlap check
// before either persists. Process-local only: deployments running multiple
// API replicas still need a store-level constraint for full protection.
type dayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDayLocks() *dayLocks {
	return &dayLocks{locks: make(map[string]*sync.Mutex)}
}

func dayLockKey(doctorID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s:%s", doctorID, day.Format("2006-01-02"))
}

// acquire locks the mutex for the given key and returns its unlock function.
func (l *dayLocks) acquire(key string) func() {
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

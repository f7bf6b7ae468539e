package schedule

import (
	"sync"
	"time"
)

// Scheduler runs delayed actions keyed by an id. Scheduling a key again
// replaces its pending action.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
	stopped bool
	wg      sync.WaitGroup
}

type entry struct {
	gen   uint64
	timer *time.Timer
}

func New() *Scheduler {
	return &Scheduler{entries: make(map[string]*entry)}
}

// After runs fn once d has elapsed unless the key is cancelled or rescheduled
// first. It reports false after Stop.
func (s *Scheduler) After(key string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	s.cancelLocked(key)

	s.gen++
	e := &entry{gen: s.gen}
	s.wg.Add(1)
	e.timer = time.AfterFunc(d, func() {
		defer s.wg.Done()
		if !s.claim(key, e.gen) {
			return
		}
		fn()
	})
	s.entries[key] = e
	return true
}

// claim removes the entry if it is still the current one for key.
func (s *Scheduler) claim(key string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.gen != gen {
		return false
	}
	delete(s.entries, key)
	return true
}

// Cancel drops the pending action for key and reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(key)
}

func (s *Scheduler) cancelLocked(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	if e.timer.Stop() {
		s.wg.Done()
	}
	return true
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Stop cancels every pending action and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key := range s.entries {
		s.cancelLocked(key)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

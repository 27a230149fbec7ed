package session

import (
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// ErrSessionNotFound is returned when a session id is not registered
var ErrSessionNotFound = errors.New("session: not found")

// Session is any live session the store can own
type Session interface {
	SessionID() string
}

// EvictFunc is called with the evicted session while its lock is held.
// It must not call back into the store.
type EvictFunc func(Session)

// Store is a concurrency-safe registry of live sessions. Each session
// has its own lock; With serializes all mutation of one session, which
// is the serialization point for concurrent answer submissions and
// timer expiry. Sessions idle beyond the configured window are evicted
// by a periodic sweep.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	idleWindow time.Duration
	onEvict    EvictFunc
	scheduler  *gocron.Scheduler
}

type entry struct {
	mu          sync.Mutex
	sess        Session
	lastTouched time.Time
}

// DefaultIdleWindow is how long an untouched session survives
const DefaultIdleWindow = 2 * time.Hour

// NewStore creates a session store. onEvict may be nil; when set it is
// invoked for every idle-evicted session so in-flight work can be
// force-completed rather than silently discarded.
func NewStore(idleWindow time.Duration, onEvict EvictFunc) *Store {
	if idleWindow <= 0 {
		idleWindow = DefaultIdleWindow
	}
	return &Store{
		entries:    make(map[string]*entry),
		idleWindow: idleWindow,
		onEvict:    onEvict,
		scheduler:  gocron.NewScheduler(time.UTC),
	}
}

// Create registers a session under its id
func (s *Store) Create(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.SessionID()] = &entry{
		sess:        sess,
		lastTouched: time.Now(),
	}
}

// With runs fn with the session locked and refreshes its idle clock.
// All reads and writes of session state must go through here.
func (s *Store) With(id string, fn func(Session) error) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastTouched = time.Now()
	return fn(e.sess)
}

// Retire removes a session from the store. Unknown ids are a no-op.
func (s *Store) Retire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper begins the periodic idle-eviction job
func (s *Store) StartSweeper(interval time.Duration) {
	s.scheduler.Every(interval).Do(s.Sweep)
	s.scheduler.StartAsync()
}

// Stop terminates the eviction job
func (s *Store) Stop() {
	s.scheduler.Stop()
}

// Sweep evicts every session idle beyond the window. An evicted session
// is handed to the eviction callback under its own lock first, so an
// in-progress quiz is force-expired and still produces a result.
func (s *Store) Sweep() {
	cutoff := time.Now().Add(-s.idleWindow)

	s.mu.RLock()
	var stale []*entry
	for _, e := range s.entries {
		stale = append(stale, e)
	}
	s.mu.RUnlock()

	for _, e := range stale {
		e.mu.Lock()
		expired := e.lastTouched.Before(cutoff)
		if expired && s.onEvict != nil {
			s.onEvict(e.sess)
		}
		id := e.sess.SessionID()
		e.mu.Unlock()

		if expired {
			s.mu.Lock()
			delete(s.entries, id)
			s.mu.Unlock()
		}
	}
}

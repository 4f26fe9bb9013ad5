// Package session keeps conversation state in memory, keyed by session id.
// Nothing here is durable: a restart starts every conversation over.
package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ashureev/skinmatch/internal/domain"
)

// Store owns every live session. Different ids can be used concurrently;
// Acquire serializes turns for the same id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	catalog  *domain.Catalog
	seed     func() uint64
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSeedSource overrides the random seed given to new and reset sessions.
func WithSeedSource(f func() uint64) Option {
	return func(s *Store) { s.seed = f }
}

// WithClock overrides time.Now.
func WithClock(f func() time.Time) Option {
	return func(s *Store) { s.now = f }
}

// NewStore creates an empty store whose sessions share catalog.
func NewStore(catalog *domain.Catalog, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*domain.Session),
		catalog:  catalog,
		seed:     rand.Uint64,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the shared catalog.
func (s *Store) Catalog() *domain.Catalog {
	return s.catalog
}

// Get returns the session for id without locking it.
func (s *Store) Get(id string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for id, creating a fresh one when missing.
// The bool result reports whether the session was created.
func (s *Store) GetOrCreate(id string) (*domain.Session, bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, false
	}
	sess := domain.NewSession(id, s.catalog, s.seed())
	now := s.now()
	sess.CreatedAt, sess.LastActive = now, now
	s.sessions[id] = sess
	return sess, true
}

// Acquire returns the session for id locked for exclusive use, creating it
// when missing. The caller must call release exactly once.
func (s *Store) Acquire(id string) (sess *domain.Session, release func(), created bool) {
	for {
		sess, created = s.GetOrCreate(id)
		sess.Lock()
		if cur, ok := s.Get(id); ok && cur == sess {
			break
		}
		// Evicted between lookup and lock.
		sess.Unlock()
	}
	var once sync.Once
	release = func() {
		once.Do(func() {
			sess.Touch(s.now())
			sess.Unlock()
		})
	}
	return sess, release, created
}

// Reset clears the entities of an existing session. It reports false when
// id is unknown.
func (s *Store) Reset(id string) bool {
	sess, ok := s.Get(id)
	if !ok {
		return false
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Reset(s.seed())
	sess.Touch(s.now())
	return true
}

// NewSeed draws a seed for a session reset performed by the caller.
func (s *Store) NewSeed() uint64 {
	return s.seed()
}

// Delete removes id from the store.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle removes sessions idle for longer than ttl and returns their
// ids. Sessions in the middle of a turn are skipped. A ttl of zero or less
// never evicts.
func (s *Store) EvictIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []string
	for id, sess := range s.sessions {
		if !sess.TryLock() {
			continue
		}
		if sess.LastActive.Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
		sess.Unlock()
	}
	return evicted
}

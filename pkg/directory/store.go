// Package directory implements the in-memory user record store.
//
// The store owns an ordered sequence of users for the lifetime of the
// process. Every operation is a linear scan over that sequence; absence is
// reported as a nil return, never as an error. A single RWMutex serializes
// mutations so concurrent requests cannot lose updates to interleaved
// scan-then-modify cycles. Nothing is persisted across restarts.
package directory

import (
	"sync"
	"time"
)

// Store owns the canonical in-memory sequence of user records.
// It is passed by injection to whatever composes the service; do not hold
// one in package-level state.
type Store struct {
	mu       sync.RWMutex
	users    []User
	seq      int // next id under IDPolicySequence
	policy   IDPolicy
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithIDPolicy sets the id assignment policy. Default is IDPolicySequence.
func WithIDPolicy(p IDPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithObserver sets the observer notified after each operation.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:    []User{},
		seq:      1,
		policy:   IDPolicySequence,
		observer: &NoopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the active id assignment policy.
func (s *Store) Policy() IDPolicy {
	return s.policy
}

// Create assigns a new id, appends a record, and returns it.
// It has no failure mode.
func (s *Store) Create(name, email string) *User {
	start := time.Now()

	s.mu.Lock()
	u := User{
		ID:    s.assignIDLocked(),
		Name:  name,
		Email: email,
	}
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.observer.OnCreate(u.ID, time.Since(start))
	return &u
}

// List returns a copy of the sequence in insertion order.
// The result is never nil; an empty store yields an empty slice.
func (s *Store) List() []User {
	start := time.Now()

	s.mu.RLock()
	out := make([]User, len(s.users))
	copy(out, s.users)
	s.mu.RUnlock()

	s.observer.OnList(len(out), time.Since(start))
	return out
}

// Get returns the first record whose id matches, or nil when absent.
// Callers must handle the nil case; no error is ever returned.
func (s *Store) Get(id int) *User {
	start := time.Now()

	s.mu.RLock()
	u, _ := s.findLocked(id)
	s.mu.RUnlock()

	if u == nil {
		s.observer.OnMiss("get", id)
		return nil
	}
	s.observer.OnGet(id, time.Since(start))
	return u
}

// Update replaces the name and email of the record with the given id,
// keeping its id and sequence position, and returns the updated record.
// Returns nil when no record matches; the store is then left unchanged.
func (s *Store) Update(id int, name, email string) *User {
	start := time.Now()

	s.mu.Lock()
	_, i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.observer.OnMiss("update", id)
		return nil
	}
	s.users[i].Name = name
	s.users[i].Email = email
	u := s.users[i]
	s.mu.Unlock()

	s.observer.OnUpdate(id, time.Since(start))
	return &u
}

// Patch merges the present fields of in into the record with the given id,
// keeping its id and sequence position, and returns the updated record.
// Omitted (nil) fields keep their prior value. Returns nil when no record
// matches; the store is then left unchanged.
func (s *Store) Patch(id int, in UpdateUser) *User {
	start := time.Now()

	s.mu.Lock()
	_, i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.observer.OnMiss("update", id)
		return nil
	}
	if in.Name != nil {
		s.users[i].Name = *in.Name
	}
	if in.Email != nil {
		s.users[i].Email = *in.Email
	}
	u := s.users[i]
	s.mu.Unlock()

	s.observer.OnUpdate(id, time.Since(start))
	return &u
}

// Delete removes the first record whose id matches and reports whether a
// record was removed. A missing id returns false and changes nothing.
func (s *Store) Delete(id int) bool {
	start := time.Now()

	s.mu.Lock()
	_, i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.observer.OnMiss("delete", id)
		return false
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	s.mu.Unlock()

	s.observer.OnDelete(id, time.Since(start))
	return true
}

// Count returns the current number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Reset clears the store and re-creates the given seed records through the
// normal id assignment path, in order. The id counter restarts at 1.
func (s *Store) Reset(seed []SeedUser) {
	s.mu.Lock()
	s.users = s.users[:0]
	s.seq = 1
	for _, sd := range seed {
		s.users = append(s.users, User{
			ID:    s.assignIDLocked(),
			Name:  sd.Name,
			Email: sd.Email,
		})
	}
	s.mu.Unlock()
}

// Clear removes all records and restarts the id counter at 1.
func (s *Store) Clear() {
	s.Reset(nil)
}

// findLocked scans for a record by id. Returns a copy of the record and its
// index, or (nil, -1) when absent. The caller must hold at least the read
// lock.
func (s *Store) findLocked(id int) (*User, int) {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, i
		}
	}
	return nil, -1
}

// assignIDLocked hands out the next id per the active policy. The caller
// must hold the write lock.
func (s *Store) assignIDLocked() int {
	if s.policy == IDPolicyLength {
		return len(s.users) + 1
	}
	id := s.seq
	s.seq++
	return id
}

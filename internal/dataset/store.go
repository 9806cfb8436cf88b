package dataset

import (
	"sync"
	"time"

	"envchart/pkg/contracts/domain"
)

// Store holds the currently installed dataset. Loads race only by
// replacement: each load claims a generation token up front, and a
// result installs only while its token is still the newest one issued,
// so a slow stale load can never clobber a fresher dataset. A failed
// load simply never installs and leaves the previous dataset visible.
//
// Installed sample slices are treated as immutable; readers receive
// the slice as-is and derived views are recomputed from scratch.
type Store struct {
	mu         sync.RWMutex
	generation uint64

	samples  []domain.Sample
	source   string
	loadedAt time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// BeginLoad claims a generation token for an in-flight load. Claiming
// a new token supersedes all earlier in-flight loads.
func (s *Store) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Install replaces the dataset wholesale, but only if token is still
// the most recently claimed generation. Returns false when the load
// has been superseded; the caller must discard its result.
func (s *Store) Install(token uint64, samples []domain.Sample, source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.generation {
		return false
	}
	s.samples = samples
	s.source = source
	s.loadedAt = time.Now()
	return true
}

// Clear removes the installed dataset. It also claims a generation so
// that in-flight loads started before the clear cannot resurrect the
// old data.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.samples = nil
	s.source = ""
	s.loadedAt = time.Time{}
}

// Snapshot returns the installed samples with their provenance. The
// returned slice must not be mutated.
func (s *Store) Snapshot() (samples []domain.Sample, source string, loadedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples, s.source, s.loadedAt
}

// Empty reports whether no dataset is installed.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples) == 0
}

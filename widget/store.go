package widget

import (
	"sync"

	"github.com/Zeyadhatem391/Weather/models"
)

// State is everything the widget renders
type State struct {
	Query       string                    `json:"query"`
	Suggestions []models.CityCandidate    `json:"suggestions"`
	Current     *models.CurrentConditions `json:"current"`
	Forecast    []models.ForecastEntry    `json:"forecast"`
	Theme       string                    `json:"theme"`
}

// Snapshot is an immutable copy of the State at one Version
type Snapshot struct {
	State
	Version uint64 `json:"version"`
}

// Store holds the view state and notifies subscribers after every change.
//
// Subscribers run with the store locked, in version order, and must not call
// back into the Store.
type Store struct {
	mu          sync.Mutex
	state       State
	version     uint64
	searchSeq   uint64
	lookupSeq   uint64
	applied     uint64 // lookup whose conditions are on screen
	subscribers map[int]func(Snapshot)
	nextID      int
}

// NewStore creates a store showing the given theme and nothing else
func NewStore(initialTheme string) *Store {
	return &Store{
		state:       State{Theme: initialTheme},
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every future change. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Update applies mutate and notifies subscribers once
func (s *Store) Update(mutate func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(mutate)
}

// BeginSearch starts a new search generation, superseding every search still
// in flight. A non-nil mutate is applied as part of the same change.
func (s *Store) BeginSearch(mutate func(*State)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchSeq++
	if mutate != nil {
		s.applyLocked(mutate)
	}
	return s.searchSeq
}

// CommitSearch applies mutate only if token is still the latest search
func (s *Store) CommitSearch(token uint64, mutate func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.searchSeq {
		return false
	}
	s.applyLocked(mutate)
	return true
}

// BeginLookup starts a new weather lookup generation
func (s *Store) BeginLookup(mutate func(*State)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookupSeq++
	if mutate != nil {
		s.applyLocked(mutate)
	}
	return s.lookupSeq
}

// CommitLookup applies mutate only if token is still the latest lookup, and
// marks that lookup as the one on screen
func (s *Store) CommitLookup(token uint64, mutate func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.lookupSeq {
		return false
	}
	s.applied = token
	s.applyLocked(mutate)
	return true
}

// CommitFollowUp applies mutate only if token is the lookup on screen. A newer
// lookup that has started but not committed does not block it.
func (s *Store) CommitFollowUp(token uint64, mutate func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == 0 || token != s.applied {
		return false
	}
	s.applyLocked(mutate)
	return true
}

func (s *Store) applyLocked(mutate func(*State)) {
	mutate(&s.state)
	s.version++

	snap := s.snapshotLocked()
	for _, fn := range s.subscribers {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Version: s.version}
	if s.state.Suggestions != nil {
		snap.Suggestions = append([]models.CityCandidate(nil), s.state.Suggestions...)
	}
	if s.state.Forecast != nil {
		snap.Forecast = append([]models.ForecastEntry(nil), s.state.Forecast...)
	}
	if s.state.Current != nil {
		current := *s.state.Current
		snap.Current = &current
	}
	return snap
}

package session

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type entry struct {
	mu      sync.Mutex
	sess    *Session
	removed bool
}

// Store owns every live session and serialises mutations to each one.
//
// The map is guarded by its own RWMutex, held only for lookup, insert, and
// delete. Each session has a dedicated mutex so independent tables proceed
// concurrently.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *zap.Logger
}

// NewStore creates an empty Store.
//
// Precondition: logger must be non-nil.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Create registers a new lobby for id.
//
// Postcondition: Returns ErrAlreadyExists if a session with id is live.
func (st *Store) Create(id string, kind Kind) (Snapshot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.entries[id]; ok {
		return Snapshot{}, fmt.Errorf("table %q: %w", id, ErrAlreadyExists)
	}
	s := New(id, kind)
	st.entries[id] = &entry{sess: s}
	st.logger.Info("session created",
		zap.String("session", id),
		zap.String("kind", string(kind)),
		zap.String("game_id", s.GameID.String()),
	)
	return s.Snapshot(), nil
}

// Get returns a snapshot of the session at id, taken under its lock.
func (st *Store) Get(id string) (Snapshot, error) {
	var snap Snapshot
	err := st.WithLock(id, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

// Exists reports whether a session is registered for id.
func (st *Store) Exists(id string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.entries[id]
	return ok
}

func (st *Store) lookup(id string) (*entry, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.entries[id]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", id, ErrNotFound)
	}
	return e, nil
}

// WithLock runs fn with exclusive access to the session at id.
//
// Precondition: fn must not retain s after returning.
// Postcondition: The session lock is released on every exit path, including
// a panic in fn. Returns ErrNotFound if the session is absent or was removed
// while waiting for the lock; otherwise returns fn's error.
func (st *Store) WithLock(id string, fn func(s *Session) error) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return fmt.Errorf("table %q: %w", id, ErrNotFound)
	}
	return fn(e.sess)
}

// Remove destroys the session at id after waiting for any in-flight mutation.
//
// Postcondition: Returns ErrNotFound if no session is live at id.
func (st *Store) Remove(id string) (Snapshot, error) {
	e, err := st.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return Snapshot{}, fmt.Errorf("table %q: %w", id, ErrNotFound)
	}
	e.removed = true

	st.mu.Lock()
	if st.entries[id] == e {
		delete(st.entries, id)
	}
	st.mu.Unlock()

	st.logger.Info("session removed", zap.String("session", id))
	return e.sess.Snapshot(), nil
}

// Replace swaps the session at id for the one built by fn, under the
// session lock. Used for resets that keep the table but start a new game.
//
// Precondition: fn must return a non-nil session with the same ID.
func (st *Store) Replace(id string, fn func(old *Session) (*Session, error)) (Snapshot, error) {
	e, err := st.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return Snapshot{}, fmt.Errorf("table %q: %w", id, ErrNotFound)
	}
	next, err := fn(e.sess)
	if err != nil {
		return Snapshot{}, err
	}
	if next == nil || next.ID != id {
		return Snapshot{}, fmt.Errorf("replacement for table %q is invalid", id)
	}
	e.sess = next
	st.logger.Info("session replaced",
		zap.String("session", id),
		zap.String("game_id", next.GameID.String()),
	)
	return next.Snapshot(), nil
}

// IDs returns the ids of all live sessions in sorted order.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.entries))
	for id := range st.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

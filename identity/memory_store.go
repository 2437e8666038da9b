package identity

import "sync"

// MemoryStore keeps the identity in memory. It is useful in tests and for nodes
// that should start fresh on every run.
type MemoryStore struct {
	mu    sync.Mutex
	id    Identity
	saved bool
	err   error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return Identity{}, ErrNotFound
	}

	return s.id.Clone(), nil
}

func (s *MemoryStore) Save(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.id = id.Clone()
	s.saved = true

	return nil
}

// FailSaves makes subsequent Save calls return err; nil restores normal behavior.
func (s *MemoryStore) FailSaves(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

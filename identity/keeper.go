package identity

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/arloliu/go-wkpf/logger"
)

// Keeper owns the in-memory identity of a node and persists every change to a Store.
//
// Store failures are logged and never returned from the setters that the protocol
// engine calls while handling traffic; the in-memory identity is always updated.
type Keeper struct {
	mu     sync.RWMutex
	id     Identity
	store  Store
	logger logger.Logger
}

// NewKeeper loads the identity from store, falling back to a fresh one.
//
// A missing or unreadable identity is replaced by New() and saved best-effort.
// A loaded identity without a UUID gets a fresh one.
func NewKeeper(store Store, l logger.Logger) *Keeper {
	if l == nil {
		l = logger.GetLogger()
	}
	k := &Keeper{store: store, logger: l}

	id, err := store.Load()
	switch {
	case err == nil && id.UUID != uuid.Nil:
		k.id = id
		return k
	case err == nil:
		l.Warn("identity has no uuid, generating one")
		id.UUID = uuid.New()
		k.id = id
	case errors.Is(err, ErrNotFound):
		l.Info("no saved identity, creating a new one")
		k.id = New()
	default:
		l.Warn("failed to load identity, creating a new one", "error", err)
		k.id = New()
	}

	k.mu.Lock()
	k.persistLocked()
	k.mu.Unlock()

	return k
}

// Identity returns a copy of the current identity.
func (k *Keeper) Identity() Identity {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.id.Clone()
}

// UUID returns the node UUID.
func (k *Keeper) UUID() uuid.UUID {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.id.UUID
}

// NodeID returns the node id.
func (k *Keeper) NodeID() uint8 {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.id.NodeID
}

// SetNodeID updates and persists the node id.
func (k *Keeper) SetNodeID(nodeID uint8) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.id.NodeID = nodeID
	k.persistLocked()
}

// Location returns a copy of the location.
func (k *Keeper) Location() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return append([]byte(nil), k.id.Location...)
}

// SetLocation updates and persists the location.
//
// It returns ErrLocationTooLong when loc exceeds MaxLocationLen and
// ErrInvalidLocation when loc is not valid UTF-8, without changing anything.
// Save failures are logged, not returned.
func (k *Keeper) SetLocation(loc []byte) error {
	if len(loc) > MaxLocationLen {
		return ErrLocationTooLong
	}
	if !utf8.Valid(loc) {
		return ErrInvalidLocation
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.id.Location = append([]byte(nil), loc...)
	k.persistLocked()

	return nil
}

// persistLocked saves the identity; k.mu must be held.
func (k *Keeper) persistLocked() {
	id := k.id.Clone()
	if err := k.store.Save(id); err != nil {
		k.logger.Error("failed to save identity", "uuid", id.UUID, "error", err)
	}
}

// Package identity holds the persistent identity of a WuKong node and the stores
// that keep it across restarts.
//
// An identity is the node's UUID, the short node id assigned by the gateway and a
// free-form location string set by the master. Stores load and save the whole
// value; [Keeper] owns the in-memory copy and persists every change.
package identity

import (
	"errors"

	"github.com/google/uuid"
)

// MaxLocationLen is the largest location the WKPF protocol can describe.
const MaxLocationLen = 255

// DefaultLocation is the location given to a freshly created identity.
const DefaultLocation = "Default"

var (
	// ErrNotFound is returned by Store.Load when nothing has been saved yet.
	ErrNotFound = errors.New("identity: not found")
	// ErrCorrupt is returned by Store.Load when the stored identity cannot be decoded.
	ErrCorrupt = errors.New("identity: corrupt record")
	// ErrLocationTooLong is returned when a location exceeds MaxLocationLen.
	ErrLocationTooLong = errors.New("identity: location too long")
	// ErrInvalidLocation is returned when a location is not valid UTF-8 and so
	// cannot be kept in the JSON identity file.
	ErrInvalidLocation = errors.New("identity: location is not valid UTF-8")
)

// Identity is the persistent identity of a node.
type Identity struct {
	UUID     uuid.UUID
	NodeID   uint8
	Location []byte
}

// New returns a fresh identity with a random UUID, node id 0 and the default location.
func New() Identity {
	return Identity{
		UUID:     uuid.New(),
		Location: []byte(DefaultLocation),
	}
}

// Clone returns a deep copy of the identity.
func (id Identity) Clone() Identity {
	id.Location = append([]byte(nil), id.Location...)
	return id
}

// Store loads and saves an identity.
type Store interface {
	// Load returns the saved identity, ErrNotFound if there is none, or ErrCorrupt.
	Load() (Identity, error)
	// Save persists the identity, replacing any previous one.
	Save(id Identity) error
}

package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// DefaultFileName is the identity file name used by the reference gateway scripts.
const DefaultFileName = "udpwkpf.json"

// fileRecord is the on-disk JSON layout: {"location": string, "uuid": [16 ints], "nodeid": int}.
type fileRecord struct {
	Location string `json:"location"`
	UUID     []int  `json:"uuid,omitempty"`
	NodeID   int    `json:"nodeid"`
}

// FileStore keeps the identity in a JSON file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}

	return &FileStore{path: path}
}

// Path returns the file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the identity file.
//
// A record without a "uuid" key is returned with a nil UUID, the caller decides
// whether to assign one. A location longer than MaxLocationLen is truncated so
// the uuid and node id survive a hand-edited file.
func (s *FileStore) Load() (Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Identity{}, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	} else if err != nil {
		return Identity{}, fmt.Errorf("identity: read %s: %w", s.path, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Identity{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}

	if rec.NodeID < 0 || rec.NodeID > 255 {
		return Identity{}, fmt.Errorf("%w: node id %d out of range", ErrCorrupt, rec.NodeID)
	}

	id := Identity{NodeID: uint8(rec.NodeID), Location: truncateLocation(rec.Location)}
	if rec.UUID == nil {
		return id, nil
	}

	if len(rec.UUID) != len(id.UUID) {
		return Identity{}, fmt.Errorf("%w: uuid has %d bytes", ErrCorrupt, len(rec.UUID))
	}
	for i, v := range rec.UUID {
		if v < 0 || v > 255 {
			return Identity{}, fmt.Errorf("%w: uuid byte %d out of range", ErrCorrupt, i)
		}
		id.UUID[i] = byte(v)
	}

	return id, nil
}

// truncateLocation cuts an over-long location to MaxLocationLen bytes on a rune
// boundary. Decoded JSON strings are always valid UTF-8.
func truncateLocation(loc string) []byte {
	if len(loc) <= MaxLocationLen {
		return []byte(loc)
	}

	n := MaxLocationLen
	for n > 0 && !utf8.RuneStart(loc[n]) {
		n--
	}

	return []byte(loc[:n])
}

// Save writes the identity file, replacing it atomically.
func (s *FileStore) Save(id Identity) error {
	rec := fileRecord{
		Location: string(id.Location),
		UUID:     make([]int, len(id.UUID)),
		NodeID:   int(id.NodeID),
	}
	for i, b := range id.UUID {
		rec.UUID[i] = int(b)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("identity: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("identity: save %s: %w", s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("identity: save %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("identity: save %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("identity: save %s: %w", s.path, err)
	}

	return nil
}

package identity

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS node_identity (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	uuid     TEXT NOT NULL,
	node_id  INTEGER NOT NULL,
	location BLOB
);`

// SQLiteStore keeps the identity in a single-row SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("identity: open %s: %w", dbPath, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("identity: init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads the stored identity.
func (s *SQLiteStore) Load() (Identity, error) {
	var (
		uuidText string
		nodeID   int
		location []byte
	)

	row := s.db.QueryRow(`SELECT uuid, node_id, location FROM node_identity WHERE id = 1`)
	if err := row.Scan(&uuidText, &nodeID, &location); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrNotFound
		}

		return Identity{}, fmt.Errorf("identity: query: %w", err)
	}

	u, err := uuid.Parse(uuidText)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if nodeID < 0 || nodeID > 255 {
		return Identity{}, fmt.Errorf("%w: node id %d out of range", ErrCorrupt, nodeID)
	}

	return Identity{UUID: u, NodeID: uint8(nodeID), Location: location}, nil
}

// Save upserts the identity row.
func (s *SQLiteStore) Save(id Identity) error {
	location := id.Location
	if location == nil {
		location = []byte{}
	}

	_, err := s.db.Exec(`
		INSERT INTO node_identity (id, uuid, node_id, location) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET uuid = excluded.uuid, node_id = excluded.node_id, location = excluded.location`,
		id.UUID.String(), int(id.NodeID), location)
	if err != nil {
		return fmt.Errorf("identity: save: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

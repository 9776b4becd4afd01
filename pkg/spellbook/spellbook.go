// Package spellbook provides SQLite storage for compiled spells.
//
// Spells are keyed by content id (see pkg/wire), so storing the same chunk
// twice is a no-op and renames never invalidate references. Payloads are
// CBOR-encoded chunks compressed with zstd.
package spellbook

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"github.com/grimoire-vm/grimoire/pkg/bytecode"
	"github.com/grimoire-vm/grimoire/pkg/wire"
)

// ErrSpellNotFound indicates the requested spell doesn't exist.
var ErrSpellNotFound = errors.New("spell not found")

// Entry describes a stored spell.
type Entry struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Book handles SQLite storage for compiled spells.
type Book struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	mu      sync.Mutex
}

// Open opens (creating if needed) a spellbook database at the given path.
func Open(dbPath string) (*Book, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS spells (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		payload    BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS spells_name ON spells(name)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Book{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close closes the database connection.
func (b *Book) Close() error {
	b.encoder.Close()
	b.decoder.Close()
	return b.db.Close()
}

// Put stores a compiled spell under the given name and returns its
// content id. Storing an identical chunk again updates only the name.
func (b *Book) Put(name string, chunk *bytecode.Chunk) (string, error) {
	data, err := wire.MarshalChunk(chunk)
	if err != nil {
		return "", fmt.Errorf("encoding spell: %w", err)
	}
	id, err := wire.ID(chunk)
	if err != nil {
		return "", fmt.Errorf("hashing spell: %w", err)
	}
	payload := b.encoder.EncodeAll(data, nil)

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err = b.db.Exec(
		"INSERT OR REPLACE INTO spells (id, name, payload) VALUES (?, ?, ?)",
		id, name, payload,
	)
	if err != nil {
		return "", fmt.Errorf("saving spell: %w", err)
	}
	return id, nil
}

// Get retrieves a spell by content id.
func (b *Book) Get(id string) (*bytecode.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var payload []byte
	err := b.db.QueryRow("SELECT payload FROM spells WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %q", ErrSpellNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading spell: %w", err)
	}
	return b.decode(payload)
}

// GetByName retrieves the most recently stored spell with the given name.
func (b *Book) GetByName(name string) (*bytecode.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var payload []byte
	err := b.db.QueryRow(
		"SELECT payload FROM spells WHERE name = ? ORDER BY created_at DESC, id LIMIT 1",
		name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: name %q", ErrSpellNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading spell: %w", err)
	}
	return b.decode(payload)
}

// List returns all stored spells, sorted by name.
func (b *Book) List() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.db.Query("SELECT id, name, created_at FROM spells ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("listing spells: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning spell row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a spell by content id.
func (b *Book) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.db.Exec("DELETE FROM spells WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting spell: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %q", ErrSpellNotFound, id)
	}
	return nil
}

func (b *Book) decode(payload []byte) (*bytecode.Chunk, error) {
	data, err := b.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing spell: %w", err)
	}
	chunk, err := wire.UnmarshalChunk(data)
	if err != nil {
		return nil, fmt.Errorf("decoding spell: %w", err)
	}
	return chunk, nil
}

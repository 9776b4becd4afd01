// Package journal provides persistent storage for the externally
// observable events of spell executions.
//
// A Recorder wraps the actor table and effect dispatcher handed to the VM
// so that every actor mutation and effect dispatch is captured in order.
// Completed runs are persisted to BoltDB keyed by run id, which makes it
// possible to audit what a spell did and to verify that re-running the
// same spell against freshly reset actors produces the same event
// sequence.
package journal

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	// ErrRunNotFound is returned when a run id doesn't exist.
	ErrRunNotFound = errors.New("run not found")
)

// Bucket names for BoltDB.
var (
	// bucketRuns stores complete run records keyed by run id.
	bucketRuns = []byte("runs")

	// bucketRunsBySpell indexes run ids by spell id.
	bucketRunsBySpell = []byte("runs_by_spell")
)

// EventKind distinguishes actor mutations from effect dispatches.
type EventKind uint8

const (
	// EventMutation is an actor attribute write.
	EventMutation EventKind = iota

	// EventEffect is a sound or particle dispatch.
	EventEffect
)

// Event is one externally observable action of a run.
type Event struct {
	Kind  EventKind
	Op    string // mnemonic, e.g. "SET_HEALTH" or "PLAY_SOUND"
	Actor int64  // actor id for mutations, unused for effects
	Value int64  // value written, or effect id
}

// Run is the persisted record of one spell execution.
type Run struct {
	ID        string // run id (UUID)
	SpellID   string // content id of the executed spell
	StartedAt time.Time
	Events    []Event
	Error     string // terminal error message, empty on success
}

// SameEvents reports whether two runs produced identical event sequences.
func SameEvents(a, b *Run) bool {
	if len(a.Events) != len(b.Events) {
		return false
	}
	for i := range a.Events {
		if a.Events[i] != b.Events[i] {
			return false
		}
	}
	return true
}

// Store persists run records.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) a journal database at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketRuns, bucketRunsBySpell} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the journal database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists a completed run.
func (s *Store) Record(run *Run) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(run); err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketRuns).Put([]byte(run.ID), buf.Bytes()); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		idx := indexKey(run.SpellID, run.ID)
		if err := tx.Bucket(bucketRunsBySpell).Put(idx, []byte(run.ID)); err != nil {
			return fmt.Errorf("indexing run: %w", err)
		}
		return nil
	})
}

// Get retrieves a run by id.
func (s *Store) Get(runID string) (*Run, error) {
	var run Run
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(runID))
		if data == nil {
			return fmt.Errorf("%w: id %q", ErrRunNotFound, runID)
		}
		return gob.NewDecoder(bytes.NewReader(data)).Decode(&run)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListBySpell returns the ids of all recorded runs of a spell,
// ordered by run id.
func (s *Store) ListBySpell(spellID string) ([]string, error) {
	var ids []string
	prefix := indexKey(spellID, "")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRunsBySpell).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			ids = append(ids, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// indexKey builds a composite spell-id/run-id index key. Spell ids are
// base58 and run ids are UUIDs, so 0x00 never appears in either.
func indexKey(spellID, runID string) []byte {
	k := make([]byte, 0, len(spellID)+1+len(runID))
	k = append(k, spellID...)
	k = append(k, 0x00)
	k = append(k, runID...)
	return k
}

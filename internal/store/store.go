// Package store persists build-progress checkpoints in a BadgerDB
// database, adapted from the preferences/stats store the original
// desktop client used for its own local settings (spec SPEC_FULL §4.10):
// here the keys are per-pass records instead of user preferences, but
// the open/view/update shape is the same.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/tbbuild/internal/tablebase"
)

const keyPassPrefix = "pass/"
const keyLastPass = "last_pass"

// PassRecord is one propagation pass's checkpoint, extending
// tablebase.PassRecord with wall-clock and diagnostic counts so a build
// can be audited after a crash.
type PassRecord struct {
	tablebase.PassRecord
	Diagnostics int           `json:"diagnostics"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Store wraps a BadgerDB database dedicated to one tablebase build's
// checkpoint history.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the checkpoint database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordPass persists one pass's record and advances the last-completed
// pass pointer. It satisfies tablebase.CheckpointStore with the richer
// PassRecord type via RecordPassDetail; RecordPass itself adapts a bare
// tablebase.PassRecord (no diagnostics/elapsed known at that call site).
func (s *Store) RecordPass(rec tablebase.PassRecord) error {
	return s.RecordPassDetail(PassRecord{PassRecord: rec})
}

// RecordPassDetail persists the full checkpoint record for one pass.
func (s *Store) RecordPassDetail(rec PassRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal pass %d: %w", rec.Pass, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(passKey(rec.Pass), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyLastPass), data)
	})
}

// LastPass returns the most recently recorded pass's checkpoint, and
// false if no pass has been recorded yet.
func (s *Store) LastPass() (PassRecord, bool, error) {
	var rec PassRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLastPass))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return PassRecord{}, false, fmt.Errorf("store: load last pass: %w", err)
	}
	return rec, found, nil
}

// Pass returns the checkpoint recorded for a specific pass number, and
// false if that pass was never recorded.
func (s *Store) Pass(pass int) (PassRecord, bool, error) {
	var rec PassRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(passKey(pass))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return PassRecord{}, false, fmt.Errorf("store: load pass %d: %w", pass, err)
	}
	return rec, found, nil
}

func passKey(pass int) []byte {
	return []byte(fmt.Sprintf("%s%08d", keyPassPrefix, pass))
}

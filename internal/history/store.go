// Package history persists batch records for the daemon so that operators
// can inspect past runs after the fact. Records live in a badger v3 database
// keyed by batch ID, with a secondary index ordered by submission time.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/logging"
)

// ErrNotFound is returned when no record exists for an ID.
var ErrNotFound = errors.New("batch not found")

// Status is the lifecycle state of a batch.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"      // rejected before submission or infrastructure fault
	StatusInterrupted Status = "interrupted" // cancelled mid-run, report is partial
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusInterrupted
}

// Record is the stored state of one batch.
type Record struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Status      Status           `json:"status"`
	Requested   int              `json:"requested"`
	SubmittedAt time.Time        `json:"submitted_at"`
	StartedAt   time.Time        `json:"started_at,omitempty"`
	FinishedAt  time.Time        `json:"finished_at,omitempty"`
	Report      *batching.Report `json:"report,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Duration returns how long the batch ran, or zero if it has not finished.
func (r *Record) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

var (
	recordPrefix = []byte("batch/")
	indexPrefix  = []byte("idx/")
)

// Store is a badger-backed record store. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history at %s: %w", dir, err)
	}
	logging.Info("History: Opened batch history at %s", dir)
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that keeps nothing on disk.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{}))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a record. SubmittedAt must stay the same across
// saves of one record since it positions the record in List.
func (s *Store) Save(rec *Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	if rec.SubmittedAt.IsZero() {
		return fmt.Errorf("record %s has no submission time", rec.ID)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(rec.ID), data); err != nil {
			return err
		}
		return txn.Set(indexKey(rec.SubmittedAt, rec.ID), []byte(rec.ID))
	})
}

// Get returns the record with the given ID or ErrNotFound.
func (s *Store) Get(id string) (*Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns up to limit records, newest submission first. A limit of
// zero or less returns every record.
func (s *Store) List(limit int) ([]*Record, error) {
	var records []*Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = indexPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key not greater than the seek key
		seek := append(append([]byte{}, indexPrefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(indexPrefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}

			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := txn.Get(recordKey(string(id)))
			if err != nil {
				return fmt.Errorf("index points at missing record %s: %w", id, err)
			}

			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return records, nil
}

func recordKey(id string) []byte {
	return append(append([]byte{}, recordPrefix...), id...)
}

// indexKey sorts by submission time, then ID for records submitted in the
// same nanosecond.
func indexKey(at time.Time, id string) []byte {
	key := make([]byte, 0, len(indexPrefix)+8+len(id))
	key = append(key, indexPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
	return append(key, id...)
}

// badgerLogger routes badger's internal logging through the unified logger.
// Badger is chatty at INFO so those lines are demoted to DEBUG.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logging.Error("(badger) "+trimNewline(format), args...)
}

func (badgerLogger) Warningf(format string, args ...any) {
	logging.Warn("(badger) "+trimNewline(format), args...)
}

func (badgerLogger) Infof(format string, args ...any) {
	logging.Debug("(badger) "+trimNewline(format), args...)
}

func (badgerLogger) Debugf(format string, args ...any) {
	logging.Debug("(badger) "+trimNewline(format), args...)
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}

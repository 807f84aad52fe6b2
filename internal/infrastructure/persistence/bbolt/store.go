// Package bbolt provides a BoltDB-backed roster store. Each student is a JSON
// value keyed by ID; the roster order is kept separately in the meta bucket.
package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"
	"go.etcd.io/bbolt"
)

const (
	studentsBucket = "students"
	metaBucket     = "meta"
	orderKey       = "order"
)

// Store provides a BoltDB-backed roster store.
type Store struct {
	db *bbolt.DB
}

var _ roster.Store = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, shared.Persistence("Open", "invalid bbolt store path", fmt.Errorf("storage path is required"))
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, shared.Persistence("Open", "open storage db", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, shared.Persistence("Open", "prepare buckets", err)
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the students in stored order. Values that do not decode are
// skipped; IDs listed in the order but absent from the bucket are reported.
func (s *Store) Load(ctx context.Context) (*roster.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.Persistence("Load", "load cancelled", err)
	}

	result := &roster.LoadResult{Students: []*student.Student{}}
	err := s.db.View(func(tx *bbolt.Tx) error {
		students := tx.Bucket([]byte(studentsBucket))
		meta := tx.Bucket([]byte(metaBucket))
		if students == nil || meta == nil {
			return fmt.Errorf("roster buckets are missing")
		}

		orderPayload := meta.Get([]byte(orderKey))
		if orderPayload == nil && students.Stats().KeyN == 0 {
			result.Missing = true
			return nil
		}

		var order []string
		if orderPayload != nil {
			if err := json.Unmarshal(orderPayload, &order); err != nil {
				return fmt.Errorf("unmarshal order: %w", err)
			}
		}

		seen := make(map[string]bool, len(order))
		position := 0
		add := func(id string, payload []byte) {
			position++
			if payload == nil {
				result.Skipped = append(result.Skipped, roster.Skipped{
					Position: position,
					Raw:      id,
					Reason:   shared.ErrStudentNotFound,
				})
				return
			}
			st, err := record.DecodeOne(payload)
			if err != nil {
				result.Skipped = append(result.Skipped, roster.Skipped{
					Position: position,
					Raw:      record.Truncate(string(payload)),
					Reason:   err,
				})
				return
			}
			result.Students = append(result.Students, st)
		}

		for _, id := range order {
			seen[id] = true
			add(id, students.Get([]byte(id)))
		}
		// Keys not covered by the order are appended in key order.
		return students.ForEach(func(k, v []byte) error {
			if !seen[string(k)] {
				add(string(k), v)
			}
			return nil
		})
	})
	if err != nil {
		return nil, shared.WrapError("store", "Load", shared.ErrPersistence, shared.ErrStoreCorrupted.Message, err)
	}
	return result, nil
}

// Save replaces the bucket contents in a single update transaction.
func (s *Store) Save(ctx context.Context, students []*student.Student) error {
	if err := ctx.Err(); err != nil {
		return shared.Persistence("Save", "save cancelled", err)
	}

	order := make([]string, 0, len(students))
	payloads := make([][]byte, 0, len(students))
	for _, st := range students {
		payload, err := json.Marshal(record.FromStudent(st))
		if err != nil {
			return shared.Persistence("Save", "marshal student "+st.ID(), err)
		}
		order = append(order, st.ID())
		payloads = append(payloads, payload)
	}
	orderPayload, err := json.Marshal(order)
	if err != nil {
		return shared.Persistence("Save", "marshal order", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(studentsBucket)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("drop students bucket: %w", err)
		}
		bucket, err := tx.CreateBucket([]byte(studentsBucket))
		if err != nil {
			return fmt.Errorf("create students bucket: %w", err)
		}
		for i, id := range order {
			if err := bucket.Put([]byte(id), payloads[i]); err != nil {
				return fmt.Errorf("put student %s: %w", id, err)
			}
		}

		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket is missing")
		}
		return meta.Put([]byte(orderKey), orderPayload)
	})
	return shared.Persistence("Save", "write roster", err)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{studentsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"
)

// RosterStore keeps the whole roster as one JSON array value, so a save is a
// single SET and never leaves a partial roster behind.
type RosterStore struct {
	cache *Cache
	key   string
}

var _ roster.Store = (*RosterStore)(nil)

// NewRosterStore creates a store over an open cache.
func NewRosterStore(cache *Cache) *RosterStore {
	return &RosterStore{cache: cache, key: cache.Key(RosterKey)}
}

// Open connects with cfg and returns the store.
func Open(ctx context.Context, cfg Config) (*RosterStore, error) {
	cache, err := NewCache(ctx, cfg)
	if err != nil {
		return nil, shared.Persistence("Open", "connect to redis", err)
	}
	return NewRosterStore(cache), nil
}

// Key returns the fully prefixed roster key.
func (s *RosterStore) Key() string {
	return s.key
}

// Load reads the roster value. An absent key is reported as Missing.
func (s *RosterStore) Load(ctx context.Context) (*roster.LoadResult, error) {
	data, err := s.cache.GetBytes(ctx, s.key)
	if errors.Is(err, ErrCacheMiss) {
		return &roster.LoadResult{Students: []*student.Student{}, Missing: true}, nil
	}
	if err != nil {
		return nil, shared.Persistence("Load", "read "+s.key, err)
	}
	return record.DecodeArray(data)
}

// Save overwrites the roster value.
func (s *RosterStore) Save(ctx context.Context, students []*student.Student) error {
	data, err := json.Marshal(record.FromStudents(students))
	if err != nil {
		return shared.Persistence("Save", "encode roster", err)
	}
	return shared.Persistence("Save", "write "+s.key, s.cache.SetBytes(ctx, s.key, data))
}

// Close closes the connection.
func (s *RosterStore) Close() error {
	return s.cache.Close()
}

package file

import (
	"context"
	"encoding/json"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"
)

// JSONStore keeps the roster as an indented JSON array of
// {"student_id", "name", "grades"} objects.
type JSONStore struct {
	path string
}

var _ roster.Store = (*JSONStore)(nil)

// NewJSONStore creates a store for the file at path. The file does not need
// to exist yet.
func NewJSONStore(path string) (*JSONStore, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return nil, shared.Persistence("Open", "invalid json store path", err)
	}
	return &JSONStore{path: clean}, nil
}

// Path returns the file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the file. Elements that are not valid student records are
// skipped; a file that is not a JSON array fails the whole load.
func (s *JSONStore) Load(ctx context.Context) (*roster.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.Persistence("Load", "load cancelled", err)
	}

	data, missing, err := readFile(s.path)
	if err != nil {
		return nil, shared.Persistence("Load", "read "+s.path, err)
	}
	if missing {
		return &roster.LoadResult{Students: []*student.Student{}, Missing: true}, nil
	}

	return record.DecodeArray(data)
}

// Save replaces the file content.
func (s *JSONStore) Save(ctx context.Context, students []*student.Student) error {
	if err := ctx.Err(); err != nil {
		return shared.Persistence("Save", "save cancelled", err)
	}

	data, err := json.MarshalIndent(record.FromStudents(students), "", "  ")
	if err != nil {
		return shared.Persistence("Save", "encode roster", err)
	}
	data = append(data, '\n')

	return shared.Persistence("Save", "write "+s.path, writeAtomic(s.path, data))
}

// Close is a no-op; the file is opened per operation.
func (s *JSONStore) Close() error {
	return nil
}

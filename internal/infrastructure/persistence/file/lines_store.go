package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"
)

const (
	fieldSeparator = "|"
	gradeSeparator = ","
	lineFields     = 3
)

// ErrFieldSeparator is returned by Save when an ID or name contains the
// field separator and so cannot be written unambiguously.
var ErrFieldSeparator = errors.New("value contains the field separator '|'")

// LinesStore keeps one student per line as "id|name|g1,g2,g3".
type LinesStore struct {
	path string
}

var (
	_ roster.Store    = (*LinesStore)(nil)
	_ roster.Acceptor = (*LinesStore)(nil)
)

// NewLinesStore creates a store for the file at path.
func NewLinesStore(path string) (*LinesStore, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return nil, shared.Persistence("Open", "invalid lines store path", err)
	}
	return &LinesStore{path: clean}, nil
}

// Path returns the file location.
func (s *LinesStore) Path() string {
	return s.path
}

// Load reads the file line by line. Blank lines are ignored; malformed lines
// are skipped and reported with their 1-based line number.
func (s *LinesStore) Load(ctx context.Context) (*roster.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.Persistence("Load", "load cancelled", err)
	}

	data, missing, err := readFile(s.path)
	if err != nil {
		return nil, shared.Persistence("Load", "read "+s.path, err)
	}
	result := &roster.LoadResult{Students: []*student.Student{}, Missing: missing}
	if missing {
		return result, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		st, err := ParseLine(line)
		if err != nil {
			result.Skipped = append(result.Skipped, roster.Skipped{
				Position: lineNo,
				Raw:      record.Truncate(line),
				Reason:   err,
			})
			continue
		}
		result.Students = append(result.Students, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, shared.Persistence("Load", "scan "+s.path, err)
	}

	return result, nil
}

// Save replaces the file content. Nothing is written if any record cannot
// be encoded.
func (s *LinesStore) Save(ctx context.Context, students []*student.Student) error {
	if err := ctx.Err(); err != nil {
		return shared.Persistence("Save", "save cancelled", err)
	}

	var buf bytes.Buffer
	for _, st := range students {
		line, err := FormatLine(st)
		if err != nil {
			return shared.Persistence("Save", fmt.Sprintf("student %q cannot be stored", st.ID()), err)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return shared.Persistence("Save", "write "+s.path, writeAtomic(s.path, buf.Bytes()))
}

// Accepts rejects an ID or name that contains the field separator.
func (s *LinesStore) Accepts(id, name string) error {
	if strings.Contains(id, fieldSeparator) || strings.Contains(name, fieldSeparator) {
		return shared.WrapError("student", "Register", shared.ErrInvalidFormat,
			"student ID and name cannot contain '|' in the lines store", ErrFieldSeparator)
	}
	return nil
}

// Close is a no-op; the file is opened per operation.
func (s *LinesStore) Close() error {
	return nil
}

// ParseLine decodes a single "id|name|grades" line.
func ParseLine(line string) (*student.Student, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != lineFields {
		return nil, shared.NewDomainError("store", "ParseLine", shared.ErrInvalidFormat,
			fmt.Sprintf("expected %d fields, got %d", lineFields, len(fields)))
	}

	var grades []float64
	if raw := strings.TrimSpace(fields[2]); raw != "" {
		for _, part := range strings.Split(raw, gradeSeparator) {
			g, err := shared.ParseGrade(part)
			if err != nil {
				return nil, err
			}
			grades = append(grades, g.Float64())
		}
	}

	return student.Restore(fields[0], fields[1], grades)
}

// FormatLine encodes a record as a single line without the trailing newline.
// Grades use the shortest representation that parses back exactly.
func FormatLine(st *student.Student) (string, error) {
	if strings.Contains(st.ID(), fieldSeparator) || strings.Contains(st.Name(), fieldSeparator) {
		return "", ErrFieldSeparator
	}

	grades := st.Grades()
	parts := make([]string, 0, len(grades))
	for _, g := range grades {
		parts = append(parts, strconv.FormatFloat(g, 'f', -1, 64))
	}

	return st.ID() + fieldSeparator + st.Name() + fieldSeparator + strings.Join(parts, gradeSeparator), nil
}

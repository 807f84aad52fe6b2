// Package record holds the serialized shape of a student entry shared by the
// document-oriented stores (JSON file, bbolt, Redis, MongoDB) and the
// element-by-element decoding that lets one bad entry be skipped.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// maxRawLen bounds how much of a rejected entry is kept in a diagnostic.
const maxRawLen = 120

// Record is one persisted student entry.
type Record struct {
	StudentID string    `json:"student_id" bson:"student_id"`
	Name      string    `json:"name" bson:"name"`
	Grades    []float64 `json:"grades" bson:"grades"`
}

// FromStudent converts a domain record. Grades is never nil so an empty
// history is stored as [] rather than null.
func FromStudent(st *student.Student) Record {
	return Record{
		StudentID: st.ID(),
		Name:      st.Name(),
		Grades:    st.Grades(),
	}
}

// FromStudents converts records in order.
func FromStudents(students []*student.Student) []Record {
	out := make([]Record, 0, len(students))
	for _, st := range students {
		out = append(out, FromStudent(st))
	}
	return out
}

// Student rebuilds the domain record, validating it.
func (r Record) Student() (*student.Student, error) {
	return student.Restore(r.StudentID, r.Name, r.Grades)
}

// String renders the record compactly for diagnostics.
func (r Record) String() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("%s|%s|%v", r.StudentID, r.Name, r.Grades)
	}
	return string(data)
}

// Collect validates already decoded records. Invalid ones are reported as
// skipped with their 1-based position.
func Collect(records []Record) *roster.LoadResult {
	result := &roster.LoadResult{Students: make([]*student.Student, 0, len(records))}
	for i, rec := range records {
		st, err := rec.Student()
		if err != nil {
			result.Skipped = append(result.Skipped, roster.Skipped{
				Position: i + 1,
				Raw:      Truncate(rec.String()),
				Reason:   err,
			})
			continue
		}
		result.Students = append(result.Students, st)
	}
	return result
}

// DecodeArray decodes a JSON array of records one element at a time, so a
// malformed element is skipped instead of failing the whole load. An empty or
// whitespace-only input is an empty roster. Anything that is not a JSON array
// is reported as shared.ErrStoreCorrupted.
func DecodeArray(data []byte) (*roster.LoadResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &roster.LoadResult{Students: []*student.Student{}}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, shared.WrapError("store", "Load", shared.ErrPersistence,
			shared.ErrStoreCorrupted.Message, err)
	}

	return DecodeElements(elements), nil
}

// DecodeElements decodes each raw JSON element independently.
func DecodeElements(elements []json.RawMessage) *roster.LoadResult {
	result := &roster.LoadResult{Students: make([]*student.Student, 0, len(elements))}
	for i, raw := range elements {
		st, err := DecodeOne(raw)
		if err != nil {
			result.Skipped = append(result.Skipped, roster.Skipped{
				Position: i + 1,
				Raw:      Truncate(string(raw)),
				Reason:   err,
			})
			continue
		}
		result.Students = append(result.Students, st)
	}
	return result
}

// DecodeOne decodes and validates a single JSON entry.
func DecodeOne(raw []byte) (*student.Student, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, shared.WrapError("store", "Decode", shared.ErrInvalidFormat, "entry is not a valid student record", err)
	}
	return rec.Student()
}

// Truncate shortens s to at most maxRawLen bytes plus "...", cutting on a
// rune boundary so a multi-byte character is never split.
func Truncate(s string) string {
	if len(s) <= maxRawLen {
		return s
	}
	cut := maxRawLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Package roster holds the in-memory collection of student records and the
// read/write operations over it. Persistence is delegated to a Store.
package roster

import (
	"iter"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Roster maps student IDs to records. Keys are case-sensitive.
// Records returned by the roster are shared with it and must be treated as
// read-only by callers; mutation goes through Register and AddGrade.
type Roster struct {
	students map[string]*student.Student
	order    []string
}

// New creates an empty roster.
func New() *Roster {
	return &Roster{
		students: make(map[string]*student.Student),
		order:    make([]string, 0),
	}
}

// FromLoad builds a roster from a store result. Records whose ID was already
// seen earlier in the result are skipped and appended to the returned
// diagnostics together with the store's own.
func FromLoad(result *LoadResult) (*Roster, []Skipped) {
	r := New()
	if result == nil {
		return r, nil
	}

	skipped := append([]Skipped(nil), result.Skipped...)
	for i, st := range result.Students {
		if _, exists := r.students[st.ID()]; exists {
			skipped = append(skipped, Skipped{
				Position: i + 1,
				Raw:      st.ID(),
				Reason:   shared.ErrStudentAlreadyExists,
			})
			continue
		}
		r.insert(st)
	}
	return r, skipped
}

func (r *Roster) insert(st *student.Student) {
	r.students[st.ID()] = st
	r.order = append(r.order, st.ID())
}

// Len returns the number of records.
func (r *Roster) Len() int {
	return len(r.order)
}

// IsEmpty reports whether the roster has no records.
func (r *Roster) IsEmpty() bool {
	return len(r.order) == 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────────────────

// Register adds a new zero-grade record. Empty id or name is a validation
// error; an existing id yields shared.ErrStudentAlreadyExists and leaves the
// roster unchanged.
func (r *Roster) Register(id, name string) (*student.Student, error) {
	st, err := student.NewStudent(id, name)
	if err != nil {
		return nil, err
	}

	if _, exists := r.students[st.ID()]; exists {
		return nil, shared.ErrStudentAlreadyExists
	}

	r.insert(st)
	return st, nil
}

// AddGrade appends one grade to the record with the given id.
func (r *Roster) AddGrade(id string, value float64) (*student.Student, error) {
	return r.AddGrades(id, value)
}

// AddGrades appends several grades to the record with the given id,
// all or nothing.
func (r *Roster) AddGrades(id string, values ...float64) (*student.Student, error) {
	st, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if err := st.AddGrades(values...); err != nil {
		return nil, err
	}
	return st, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// Get returns the record with exactly this id.
func (r *Roster) Get(id string) (*student.Student, error) {
	st, ok := r.students[strings.TrimSpace(id)]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return st, nil
}

// Contains reports whether id is registered.
func (r *Roster) Contains(id string) bool {
	_, ok := r.students[strings.TrimSpace(id)]
	return ok
}

// All returns every record in insertion order as a new slice.
func (r *Roster) All() []*student.Student {
	out := make([]*student.Student, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.students[id])
	}
	return out
}

// Find yields the records matching pred. The sequence re-scans the roster each
// time it is ranged over, so it always reflects the current state.
func (r *Roster) Find(pred Predicate) iter.Seq[*student.Student] {
	return func(yield func(*student.Student) bool) {
		for _, id := range r.order {
			st := r.students[id]
			if pred != nil && !pred(st) {
				continue
			}
			if !yield(st) {
				return
			}
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDICATES
// ══════════════════════════════════════════════════════════════════════════════

// Predicate selects records for Find.
type Predicate func(*student.Student) bool

// ByID matches the record whose id equals id exactly (case-sensitive).
func ByID(id string) Predicate {
	id = strings.TrimSpace(id)
	return func(st *student.Student) bool {
		return st.ID() == id
	}
}

// Matching matches records whose id or name contains query, ignoring case.
func Matching(query string) Predicate {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(st *student.Student) bool {
		return strings.Contains(strings.ToLower(st.ID()), q) ||
			strings.Contains(strings.ToLower(st.Name()), q)
	}
}

// ByPerformance matches records whose label under policy equals label.
func ByPerformance(policy student.LabelPolicy, label student.Performance) Predicate {
	return func(st *student.Student) bool {
		return st.Performance(policy) == label
	}
}

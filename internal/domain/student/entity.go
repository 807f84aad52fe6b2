package student

import (
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is one student's identity and grade history.
// The record is owned by exactly one roster entry; Grades returns a copy so
// callers cannot alias the internal slice.
type Student struct {
	id     string
	name   string
	grades []float64
}

// NewStudent creates a record with no grades.
// Both id and name are trimmed; empty values are rejected.
func NewStudent(id, name string) (*Student, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)

	if err := ValidateIdentity(id, name); err != nil {
		return nil, err
	}

	return &Student{
		id:     id,
		name:   name,
		grades: make([]float64, 0),
	}, nil
}

// Restore rebuilds a record from persisted data.
// The id is trimmed like user input so a stored " S1 " is found as "S1"; the
// name is kept verbatim. Grades are range-checked so a corrupted entry never
// enters the roster.
func Restore(id, name string, grades []float64) (*Student, error) {
	id = strings.TrimSpace(id)
	if err := ValidateIdentity(id, name); err != nil {
		return nil, err
	}

	restored := make([]float64, 0, len(grades))
	for _, g := range grades {
		if !shared.Grade(g).IsValid() {
			return nil, shared.ErrGradeOutOfRange
		}
		restored = append(restored, g)
	}

	return &Student{
		id:     id,
		name:   name,
		grades: restored,
	}, nil
}

// ValidateIdentity checks the id/name pair shared by NewStudent and Restore.
func ValidateIdentity(id, name string) error {
	if strings.TrimSpace(id) == "" {
		return shared.ErrEmptyStudentID
	}
	if strings.TrimSpace(name) == "" {
		return shared.ErrEmptyStudentName
	}
	if strings.ContainsAny(id, "\r\n") || strings.ContainsAny(name, "\r\n") {
		return shared.ErrMultilineValue
	}
	return nil
}

// ID returns the student identifier.
func (s *Student) ID() string {
	return s.id
}

// Name returns the display name.
func (s *Student) Name() string {
	return s.name
}

// Grades returns a copy of the grades in insertion order.
func (s *Student) Grades() []float64 {
	out := make([]float64, len(s.grades))
	copy(out, s.grades)
	return out
}

// GradeCount returns how many grades have been recorded.
func (s *Student) GradeCount() int {
	return len(s.grades)
}

// HasGrades reports whether at least one grade has been recorded.
func (s *Student) HasGrades() bool {
	return len(s.grades) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// BUSINESS METHODS
// ══════════════════════════════════════════════════════════════════════════════

// AddGrade appends a grade. Values outside [0, 100] are rejected with
// shared.ErrGradeOutOfRange and the record is left unchanged.
func (s *Student) AddGrade(value float64) error {
	g, err := shared.NewGrade(value)
	if err != nil {
		return err
	}
	s.grades = append(s.grades, g.Float64())
	return nil
}

// AddGrades appends several grades at once. Either all values are appended
// or, if any is out of range, none is.
func (s *Student) AddGrades(values ...float64) error {
	for _, v := range values {
		if !shared.Grade(v).IsValid() {
			return shared.ErrGradeOutOfRange
		}
	}
	s.grades = append(s.grades, values...)
	return nil
}

// Average returns the arithmetic mean of the grades, or 0 when there are none.
func (s *Student) Average() float64 {
	if len(s.grades) == 0 {
		return 0.0
	}

	var sum float64
	for _, g := range s.grades {
		sum += g
	}
	return sum / float64(len(s.grades))
}

// Performance classifies the average under the given policy.
func (s *Student) Performance(policy LabelPolicy) Performance {
	return policy.Classify(s.Average())
}

// Clone returns an independent copy of the record.
func (s *Student) Clone() *Student {
	return &Student{
		id:     s.id,
		name:   s.name,
		grades: s.Grades(),
	}
}

// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// StudentDTO is a read-only projection of one record.
type StudentDTO struct {
	// StudentID is the caller-chosen identifier.
	StudentID string `json:"student_id"`

	// Name is the display name.
	Name string `json:"name"`

	// Grades are the recorded grades in insertion order.
	Grades []float64 `json:"grades"`

	// Average is the mean of Grades, 0 when there are none.
	Average float64 `json:"average"`

	// Performance is the label under the configured policy.
	Performance student.Performance `json:"performance"`
}

// HasGrades reports whether any grade was recorded.
func (d StudentDTO) HasGrades() bool {
	return len(d.Grades) > 0
}

// NewStudentDTO projects a record using the given label policy.
func NewStudentDTO(st *student.Student, policy student.LabelPolicy) StudentDTO {
	return StudentDTO{
		StudentID:   st.ID(),
		Name:        st.Name(),
		Grades:      st.Grades(),
		Average:     st.Average(),
		Performance: st.Performance(policy),
	}
}

// NewStudentDTOs projects records in the order given.
func NewStudentDTOs(students []*student.Student, policy student.LabelPolicy) []StudentDTO {
	out := make([]StudentDTO, 0, len(students))
	for _, st := range students {
		out = append(out, NewStudentDTO(st, policy))
	}
	return out
}

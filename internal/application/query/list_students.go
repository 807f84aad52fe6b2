package query

import (
	"context"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENTS QUERY
// Lists every student, either in roster order or sorted by a key.
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsQuery contains the ordering options.
type ListStudentsQuery struct {
	// SortBy is the sort key; empty keeps roster order.
	SortBy roster.SortKey

	// Descending reverses the order (ties still keep roster order).
	Descending bool
}

// Validate checks the query.
func (q ListStudentsQuery) Validate() error {
	if q.SortBy != "" && !q.SortBy.IsValid() {
		return shared.NewDomainError("roster", "List", shared.ErrInvalidFormat, "unknown sort key "+string(q.SortBy))
	}
	return nil
}

// ListStudentsResult contains the ordered students.
type ListStudentsResult struct {
	Students   []StudentDTO   `json:"students"`
	SortBy     roster.SortKey `json:"sort_by,omitempty"`
	Descending bool           `json:"descending"`
}

// ListStudentsHandler handles ListStudentsQuery.
type ListStudentsHandler struct {
	roster *roster.Roster
	policy student.LabelPolicy
}

// NewListStudentsHandler creates a new ListStudentsHandler.
func NewListStudentsHandler(r *roster.Roster, policy student.LabelPolicy) *ListStudentsHandler {
	return &ListStudentsHandler{roster: r, policy: policy}
}

// Handle lists the students.
func (h *ListStudentsHandler) Handle(_ context.Context, q ListStudentsQuery) (*ListStudentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	students := h.roster.All()
	if q.SortBy != "" {
		students = h.roster.SortedView(q.SortBy, q.Descending)
	}

	return &ListStudentsResult{
		Students:   NewStudentDTOs(students, h.policy),
		SortBy:     q.SortBy,
		Descending: q.Descending,
	}, nil
}

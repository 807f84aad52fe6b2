package query

import (
	"context"
	"slices"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH STUDENTS QUERY
// Case-insensitive substring search over student ID and name.
// ══════════════════════════════════════════════════════════════════════════════

// SearchStudentsQuery contains the search text.
type SearchStudentsQuery struct {
	// Query is matched against ID and name, ignoring case.
	Query string
}

// Validate checks the query.
func (q SearchStudentsQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return shared.NewDomainError("roster", "Search", shared.ErrEmptyValue, "search query cannot be empty")
	}
	return nil
}

// SearchStudentsResult contains the matches in roster order.
type SearchStudentsResult struct {
	Query    string       `json:"query"`
	Students []StudentDTO `json:"students"`
}

// SearchStudentsHandler handles SearchStudentsQuery.
type SearchStudentsHandler struct {
	roster *roster.Roster
	policy student.LabelPolicy
}

// NewSearchStudentsHandler creates a new SearchStudentsHandler.
func NewSearchStudentsHandler(r *roster.Roster, policy student.LabelPolicy) *SearchStudentsHandler {
	return &SearchStudentsHandler{roster: r, policy: policy}
}

// Handle runs the search.
func (h *SearchStudentsHandler) Handle(_ context.Context, q SearchStudentsQuery) (*SearchStudentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	matches := slices.Collect(h.roster.Find(roster.Matching(q.Query)))
	return &SearchStudentsResult{
		Query:    strings.TrimSpace(q.Query),
		Students: NewStudentDTOs(matches, h.policy),
	}, nil
}

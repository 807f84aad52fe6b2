package roster

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// SortKey names the field a sorted view is ordered by.
type SortKey string

const (
	SortByID      SortKey = "id"
	SortByName    SortKey = "name"
	SortByAverage SortKey = "average"
)

// IsValid checks that the key is known.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByID, SortByName, SortByAverage:
		return true
	default:
		return false
	}
}

// ParseSortKey parses a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "avg" {
		key = SortByAverage
	}
	if !key.IsValid() {
		return "", shared.NewDomainError("roster", "ParseSortKey", shared.ErrInvalidFormat,
			fmt.Sprintf("unknown sort key %q", s))
	}
	return key, nil
}

func compareBy(key SortKey) func(a, b *student.Student) int {
	switch key {
	case SortByName:
		return func(a, b *student.Student) int {
			return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
		}
	case SortByAverage:
		return func(a, b *student.Student) int {
			return cmp.Compare(a.Average(), b.Average())
		}
	default:
		return func(a, b *student.Student) int {
			return strings.Compare(a.ID(), b.ID())
		}
	}
}

// SortedView returns all records ordered by key. The sort is stable in both
// directions: records with equal keys keep their insertion order. The roster
// itself is not reordered.
func (r *Roster) SortedView(key SortKey, descending bool) []*student.Student {
	return Sort(r.All(), key, descending)
}

// Sort orders a copy of students by key, stably.
func Sort(students []*student.Student, key SortKey, descending bool) []*student.Student {
	out := slices.Clone(students)
	compare := compareBy(key)
	if descending {
		asc := compare
		compare = func(a, b *student.Student) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

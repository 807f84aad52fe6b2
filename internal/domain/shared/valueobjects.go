// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages.
package shared

import (
	"math"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Grade Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Grade bounds, both inclusive.
const (
	MinGrade = 0.0
	MaxGrade = 100.0
)

// Grade represents a single numeric grade.
type Grade float64

// IsValid checks if the grade lies within [MinGrade, MaxGrade].
func (g Grade) IsValid() bool {
	f := float64(g)
	if math.IsNaN(f) {
		return false
	}
	return f >= MinGrade && f <= MaxGrade
}

// Float64 returns the underlying float64 value.
func (g Grade) Float64() float64 {
	return float64(g)
}

// String returns the shortest representation that parses back to the same value.
func (g Grade) String() string {
	return strconv.FormatFloat(float64(g), 'f', -1, 64)
}

// NewGrade creates a new Grade with validation.
func NewGrade(value float64) (Grade, error) {
	g := Grade(value)
	if !g.IsValid() {
		return 0, ErrGradeOutOfRange
	}
	return g, nil
}

// ParseGrade parses a textual grade and validates its range.
func ParseGrade(s string) (Grade, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, WrapError("student", "ParseGrade", ErrInvalidFormat, "grade is not a number", err)
	}
	return NewGrade(value)
}

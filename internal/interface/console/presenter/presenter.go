// Package presenter formats query results and errors for the terminal.
// Presenters handle the conversion from application DTOs to plain text tables
// and human-readable messages; they never print.
package presenter

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

const ruleWidth = 70

// ══════════════════════════════════════════════════════════════════════════════
// TABLES
// ══════════════════════════════════════════════════════════════════════════════

// Report renders the performance report: one row per student, then the
// class summary.
func Report(report *query.PerformanceReport) string {
	if report.IsEmpty() {
		return "No students registered yet.\n"
	}

	var sb strings.Builder
	sb.WriteString(banner("Student Performance Report"))

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tGrades\tAverage\tPerformance")
	for _, e := range report.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", e.StudentID, e.Name, Grades(e.Grades), e.Average, e.Performance)
	}
	_ = tw.Flush()

	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	sb.WriteString(Summary(report.Summary))
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	return sb.String()
}

// Summary renders the class statistics of a report.
func Summary(s query.ReportSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Students: %d  Graded: %d  Class average: %.2f\n", s.Students, s.Graded, s.ClassAverage)
	if s.Graded > 0 {
		fmt.Fprintf(&sb, "Highest: %.2f  Lowest: %.2f\n", s.Highest, s.Lowest)
	}

	parts := make([]string, 0, len(s.Distribution))
	for _, lc := range s.Distribution {
		parts = append(parts, fmt.Sprintf("%s: %d", lc.Label, lc.Count))
	}
	if len(parts) > 0 {
		sb.WriteString(strings.Join(parts, ", ") + "\n")
	}
	return sb.String()
}

// Students renders a titled list of students with grades and average.
func Students(title string, students []query.StudentDTO) string {
	if len(students) == 0 {
		return "No students registered yet.\n"
	}

	var sb strings.Builder
	sb.WriteString(banner(title))

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tGrades\tAvg")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", s.StudentID, s.Name, Grades(s.Grades), s.Average)
	}
	_ = tw.Flush()

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	return sb.String()
}

// SearchResults renders the matches of a search.
func SearchResults(res *query.SearchStudentsResult) string {
	if len(res.Students) == 0 {
		return "No matching students found.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(res.Students))
	for _, s := range res.Students {
		fmt.Fprintf(&sb, " - ID: %s, Name: %s, Grades: %s, Average: %.2f, Performance: %s\n",
			s.StudentID, s.Name, Grades(s.Grades), s.Average, s.Performance)
	}
	return sb.String()
}

// SortTitle names a sorted listing.
func SortTitle(key roster.SortKey, descending bool) string {
	direction := "ascending"
	if descending {
		direction = "descending"
	}
	return fmt.Sprintf("Students sorted by %s (%s)", key, direction)
}

// Grades joins grades for display; an empty history shows as "-".
func Grades(grades []float64) string {
	if len(grades) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(grades))
	for _, g := range grades {
		parts = append(parts, shared.Grade(g).String())
	}
	return strings.Join(parts, ", ")
}

func banner(title string) string {
	rule := strings.Repeat("=", ruleWidth)
	pad := (ruleWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	return "\n" + rule + "\n" + strings.Repeat(" ", pad) + title + "\n" + rule + "\n"
}

// ══════════════════════════════════════════════════════════════════════════════
// SKIPPED ENTRIES
// ══════════════════════════════════════════════════════════════════════════════

// Skipped renders one line per entry left out during load.
func Skipped(skipped []roster.Skipped) string {
	var sb strings.Builder
	for _, s := range skipped {
		sb.WriteString("Warning: " + s.String() + "\n")
	}
	return sb.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// Error turns an error into a one-line message for the user based on its
// kind. The domain message is preferred over the full wrapped chain.
func Error(err error) string {
	switch {
	case err == nil:
		return ""
	case shared.IsAlreadyExists(err):
		return "Student ID already exists."
	case shared.IsNotFound(err):
		return "Student not found."
	case shared.IsValidation(err):
		return "Invalid input: " + message(err)
	case shared.IsPersistence(err):
		return "Could not save data: " + err.Error()
	default:
		return "An error occurred: " + err.Error()
	}
}

func message(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}

package query

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERFORMANCE REPORT QUERY
// Average and performance label for one student or the whole roster,
// plus a class summary.
// ══════════════════════════════════════════════════════════════════════════════

// PerformanceReportQuery selects the students to report on.
type PerformanceReportQuery struct {
	// StudentID restricts the report to one student; empty means everyone.
	StudentID string

	// SortBy optionally orders the entries; empty keeps roster order.
	SortBy roster.SortKey

	// Descending reverses the order.
	Descending bool
}

// LabelCount is how many students received a label.
type LabelCount struct {
	Label student.Performance `json:"label"`
	Count int                 `json:"count"`
}

// ReportSummary aggregates the report entries.
type ReportSummary struct {
	// Students is the number of entries.
	Students int `json:"students"`

	// Graded is the number of entries with at least one grade.
	Graded int `json:"graded"`

	// ClassAverage is the mean of the graded students' averages, 0 if none.
	ClassAverage float64 `json:"class_average"`

	// Highest and Lowest are the extreme averages among graded students.
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`

	// Distribution counts entries per label, best label first.
	Distribution []LabelCount `json:"distribution"`
}

// PerformanceReport is the full report.
type PerformanceReport struct {
	Policy      student.LabelPolicy `json:"policy"`
	Entries     []StudentDTO        `json:"entries"`
	Summary     ReportSummary       `json:"summary"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// IsEmpty reports whether the report has no entries.
func (r *PerformanceReport) IsEmpty() bool {
	return len(r.Entries) == 0
}

// BuildReport projects the given, already selected and ordered, records into
// a report. It has no side effects.
func BuildReport(students []*student.Student, policy student.LabelPolicy, now time.Time) *PerformanceReport {
	entries := NewStudentDTOs(students, policy)

	summary := ReportSummary{Students: len(entries)}
	counts := make(map[student.Performance]int, len(policy.Labels()))

	var sum float64
	for _, e := range entries {
		counts[e.Performance]++
		if !e.HasGrades() {
			continue
		}
		if summary.Graded == 0 || e.Average > summary.Highest {
			summary.Highest = e.Average
		}
		if summary.Graded == 0 || e.Average < summary.Lowest {
			summary.Lowest = e.Average
		}
		summary.Graded++
		sum += e.Average
	}
	if summary.Graded > 0 {
		summary.ClassAverage = sum / float64(summary.Graded)
	}

	for _, label := range policy.Labels() {
		summary.Distribution = append(summary.Distribution, LabelCount{Label: label, Count: counts[label]})
	}

	return &PerformanceReport{
		Policy:      policy,
		Entries:     entries,
		Summary:     summary,
		GeneratedAt: now.UTC(),
	}
}

// PerformanceReportHandler handles PerformanceReportQuery.
type PerformanceReportHandler struct {
	roster *roster.Roster
	policy student.LabelPolicy
	now    func() time.Time
}

// NewPerformanceReportHandler creates a new PerformanceReportHandler.
func NewPerformanceReportHandler(r *roster.Roster, policy student.LabelPolicy) *PerformanceReportHandler {
	return &PerformanceReportHandler{roster: r, policy: policy, now: time.Now}
}

// Handle builds the report. A StudentID that is not registered yields
// shared.ErrStudentNotFound.
func (h *PerformanceReportHandler) Handle(_ context.Context, q PerformanceReportQuery) (*PerformanceReport, error) {
	list := ListStudentsQuery{SortBy: q.SortBy, Descending: q.Descending}
	if err := list.Validate(); err != nil {
		return nil, err
	}

	var students []*student.Student
	if id := strings.TrimSpace(q.StudentID); id != "" {
		if _, err := h.roster.Get(id); err != nil {
			return nil, err
		}
		students = slices.Collect(h.roster.Find(roster.ByID(id)))
	} else {
		students = h.roster.All()
	}

	if q.SortBy != "" {
		students = roster.Sort(students, q.SortBy, q.Descending)
	}

	return BuildReport(students, h.policy, h.now()), nil
}

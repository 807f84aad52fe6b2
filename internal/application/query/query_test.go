package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

func sampleRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r := roster.New()
	for _, s := range []struct {
		id     string
		name   string
		grades []float64
	}{
		{"S1", "Alice", []float64{95, 85}},
		{"S2", "bob", []float64{70}},
		{"S3", "Malia", []float64{80}},
		{"S4", "Carl", nil},
	} {
		_, err := r.Register(s.id, s.name)
		require.NoError(t, err)
		if len(s.grades) > 0 {
			_, err = r.AddGrades(s.id, s.grades...)
			require.NoError(t, err)
		}
	}
	return r
}

func studentIDs(entries []StudentDTO) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.StudentID)
	}
	return out
}

func TestSearchStudents(t *testing.T) {
	h := NewSearchStudentsHandler(sampleRoster(t), student.PolicyTiered)

	res, err := h.Handle(context.Background(), SearchStudentsQuery{Query: "ali"})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S3"}, studentIDs(res.Students))
	assert.Equal(t, student.PerformanceExcellent, res.Students[0].Performance)

	res, err = h.Handle(context.Background(), SearchStudentsQuery{Query: "s2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, studentIDs(res.Students))

	res, err = h.Handle(context.Background(), SearchStudentsQuery{Query: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, res.Students)

	_, err = h.Handle(context.Background(), SearchStudentsQuery{Query: "   "})
	assert.True(t, shared.IsValidation(err))
}

func TestListStudents(t *testing.T) {
	h := NewListStudentsHandler(sampleRoster(t), student.PolicyTiered)

	res, err := h.Handle(context.Background(), ListStudentsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S3", "S4"}, studentIDs(res.Students))

	res, err = h.Handle(context.Background(), ListStudentsQuery{SortBy: roster.SortByAverage, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S3", "S2", "S4"}, studentIDs(res.Students))

	res, err = h.Handle(context.Background(), ListStudentsQuery{SortBy: roster.SortByName})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S4", "S3"}, studentIDs(res.Students))

	_, err = h.Handle(context.Background(), ListStudentsQuery{SortBy: "grade"})
	assert.True(t, shared.IsValidation(err))
}

func TestPerformanceReport_All(t *testing.T) {
	h := NewPerformanceReportHandler(sampleRoster(t), student.PolicyTiered)
	h.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }

	report, err := h.Handle(context.Background(), PerformanceReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{"S1", "S2", "S3", "S4"}, studentIDs(report.Entries))
	assert.Equal(t, 4, report.Summary.Students)
	assert.Equal(t, 3, report.Summary.Graded)
	assert.Equal(t, 80.0, report.Summary.ClassAverage)
	assert.Equal(t, 90.0, report.Summary.Highest)
	assert.Equal(t, 70.0, report.Summary.Lowest)
	assert.Equal(t, []LabelCount{
		{Label: student.PerformanceExcellent, Count: 1},
		{Label: student.PerformanceGood, Count: 1},
		{Label: student.PerformanceAverage, Count: 1},
		{Label: student.PerformanceBelowAverage, Count: 0},
		{Label: student.PerformancePoor, Count: 1},
	}, report.Summary.Distribution)
	assert.Equal(t, 2026, report.GeneratedAt.Year())
}

func TestPerformanceReport_One(t *testing.T) {
	h := NewPerformanceReportHandler(sampleRoster(t), student.PolicyPassFail)

	report, err := h.Handle(context.Background(), PerformanceReportQuery{StudentID: "S1"})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, 90.0, report.Entries[0].Average)
	assert.Equal(t, student.PerformancePass, report.Entries[0].Performance)

	_, err = h.Handle(context.Background(), PerformanceReportQuery{StudentID: "s1"})
	assert.True(t, shared.IsNotFound(err))
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil, student.PolicyPassFail, time.Now())
	assert.True(t, report.IsEmpty())
	assert.Equal(t, 0.0, report.Summary.ClassAverage)
	assert.Equal(t, []LabelCount{
		{Label: student.PerformancePass, Count: 0},
		{Label: student.PerformanceFail, Count: 0},
	}, report.Summary.Distribution)
}

package student

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

func TestNewStudent(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		student string
		wantErr error
	}{
		{name: "ok", id: "S1", student: "Alice"},
		{name: "trims whitespace", id: "  S2 ", student: " Bob  "},
		{name: "empty id", id: "   ", student: "Alice", wantErr: shared.ErrEmptyStudentID},
		{name: "empty name", id: "S1", student: "\t", wantErr: shared.ErrEmptyStudentName},
		{name: "line break in name", id: "S1", student: "Ali\nce", wantErr: shared.ErrMultilineValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewStudent(tt.id, tt.student)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, shared.IsValidation(err))
				assert.Nil(t, st)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, st.GradeCount())
			assert.NotContains(t, st.ID(), " ")
			assert.NotContains(t, st.Name(), "  ")
		})
	}
}

func TestStudent_AddGrade_Accepted(t *testing.T) {
	for _, g := range []float64{0, 0.5, 42, 59.99, 99.999, 100} {
		st, err := NewStudent("S1", "Alice")
		require.NoError(t, err)

		require.NoError(t, st.AddGrade(g))
		assert.Equal(t, g, st.Average(), "average of single grade %v", g)
		assert.Equal(t, []float64{g}, st.Grades())
	}
}

func TestStudent_AddGrade_Rejected(t *testing.T) {
	for _, g := range []float64{-1, -0.0001, 100.0001, 250, math.NaN(), math.Inf(1), math.Inf(-1)} {
		st, err := NewStudent("S1", "Alice")
		require.NoError(t, err)
		require.NoError(t, st.AddGrade(70))

		err = st.AddGrade(g)
		assert.ErrorIs(t, err, shared.ErrValueOutOfRange, "grade %v", g)
		assert.Equal(t, []float64{70}, st.Grades(), "grades must be unchanged after %v", g)
	}
}

func TestStudent_AddGrades_AllOrNothing(t *testing.T) {
	st, err := NewStudent("S1", "Alice")
	require.NoError(t, err)

	err = st.AddGrades(80, 120, 90)
	assert.ErrorIs(t, err, shared.ErrGradeOutOfRange)
	assert.Empty(t, st.Grades())

	require.NoError(t, st.AddGrades(80, 90, 100))
	assert.Equal(t, []float64{80, 90, 100}, st.Grades())
	assert.Equal(t, 90.0, st.Average())
}

func TestStudent_AverageEmpty(t *testing.T) {
	st, err := NewStudent("S1", "Alice")
	require.NoError(t, err)

	assert.Equal(t, 0.0, st.Average())
	assert.False(t, st.HasGrades())
	assert.Equal(t, PerformancePoor, st.Performance(PolicyTiered))
	assert.Equal(t, PerformanceFail, st.Performance(PolicyPassFail))
}

func TestStudent_GradesAreCopied(t *testing.T) {
	st, err := NewStudent("S1", "Alice")
	require.NoError(t, err)
	require.NoError(t, st.AddGrade(50))

	grades := st.Grades()
	grades[0] = 0
	assert.Equal(t, []float64{50}, st.Grades())

	clone := st.Clone()
	require.NoError(t, clone.AddGrade(100))
	assert.Equal(t, 1, st.GradeCount())
	assert.Equal(t, 2, clone.GradeCount())
}

func TestRestore(t *testing.T) {
	st, err := Restore("S1", "Alice", []float64{95, 85})
	require.NoError(t, err)
	assert.Equal(t, "S1", st.ID())
	assert.Equal(t, 90.0, st.Average())

	_, err = Restore("S1", "Alice", []float64{95, 101})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = Restore("", "Alice", nil)
	assert.ErrorIs(t, err, shared.ErrEmptyStudentID)

	empty, err := Restore("S2", "Bob", nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Grades())
	assert.Empty(t, empty.Grades())
}

func TestRestore_TrimsID(t *testing.T) {
	st, err := Restore("  S1\t", " Alice ", nil)
	require.NoError(t, err)
	assert.Equal(t, "S1", st.ID())
	assert.Equal(t, " Alice ", st.Name())
}

func TestScenario_Alice(t *testing.T) {
	st, err := NewStudent("S1", "Alice")
	require.NoError(t, err)
	require.NoError(t, st.AddGrade(95))
	require.NoError(t, st.AddGrade(85))

	assert.Equal(t, 90.0, st.Average())
	assert.Equal(t, PerformanceExcellent, st.Performance(PolicyTiered))
	assert.Equal(t, PerformancePass, st.Performance(PolicyPassFail))
}

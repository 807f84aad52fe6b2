package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

type memoryStore struct {
	saved   []*student.Student
	saves   int
	saveErr error
}

func (m *memoryStore) Load(context.Context) (*roster.LoadResult, error) {
	return &roster.LoadResult{Students: m.saved}, nil
}

func (m *memoryStore) Save(_ context.Context, students []*student.Student) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = students
	return nil
}

func (m *memoryStore) Close() error { return nil }

type harness struct {
	roster   *roster.Roster
	store    *memoryStore
	out      *bytes.Buffer
	exported []string
}

func runScript(t *testing.T, policy student.LabelPolicy, script string, setup ...func(*harness)) *harness {
	t.Helper()
	h := &harness{roster: roster.New(), store: &memoryStore{}, out: &bytes.Buffer{}}
	for _, fn := range setup {
		fn(h)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := Handlers{
		Register: command.NewRegisterStudentHandler(h.roster, h.store, nil, logger),
		AddGrade: command.NewAddGradeHandler(h.roster, h.store, nil, logger),
		Save:     command.NewSaveRosterHandler(h.roster, h.store, logger),
		Search:   query.NewSearchStudentsHandler(h.roster, policy),
		List:     query.NewListStudentsHandler(h.roster, policy),
		Report:   query.NewPerformanceReportHandler(h.roster, policy),
		Export: func(path string, report *query.PerformanceReport) (string, error) {
			h.exported = append(h.exported, path)
			return path, nil
		},
	}

	app := NewApp(handlers, Config{In: strings.NewReader(script), Out: h.out, Logger: logger})
	require.NoError(t, app.Run(context.Background()))
	return h
}

func TestApp_AliceScenario(t *testing.T) {
	script := strings.Join([]string{
		"1", "S1", "Alice",
		"2", "S1", "95 85",
		"3", "2", "S1",
		"1", "S1",
		"4", "ali",
		"8",
	}, "\n") + "\n"

	h := runScript(t, student.PolicyTiered, script)
	out := h.out.String()

	assert.Contains(t, out, "Student 'Alice' registered successfully.")
	assert.Contains(t, out, "Grades updated for Alice. Average is now 90.00.")
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "Student ID already exists.")
	assert.Contains(t, out, "Found 1 result(s):")
	assert.Contains(t, out, "All changes saved. Goodbye!")

	st, err := h.roster.Get("S1")
	require.NoError(t, err)
	assert.Equal(t, []float64{95, 85}, st.Grades())
	require.Len(t, h.store.saved, 1)
}

func TestApp_PassFailPolicy(t *testing.T) {
	h := runScript(t, student.PolicyPassFail, "1\nS1\nAlice\n2\nS1\n95,85\n3\n1\n")
	assert.Contains(t, h.out.String(), "PASS")
	assert.NotContains(t, h.out.String(), "Excellent")
}

func TestApp_EOFQuitsAndSaves(t *testing.T) {
	h := runScript(t, student.PolicyTiered, "1\nS1\n")

	assert.Contains(t, h.out.String(), "All changes saved. Goodbye!")
	assert.Equal(t, 0, h.roster.Len(), "registration abandoned mid-way")
	assert.Equal(t, 1, h.store.saves)
}

func TestApp_InvalidInputKeepsRunning(t *testing.T) {
	script := strings.Join([]string{
		"9",
		"2", "nobody",
		"1", "S1", "Alice",
		"2", "S1", "abc",
		"2", "S1", "120",
		"4", "   ",
		"6", "7",
		"3", "5",
	}, "\n") + "\n"

	h := runScript(t, student.PolicyTiered, script)
	out := h.out.String()

	assert.Contains(t, out, "Unknown option, try again.")
	assert.Contains(t, out, "Student not found.")
	assert.Contains(t, out, `Invalid input: "abc" is not a number`)
	assert.Contains(t, out, "Invalid input: grades[0] must be at most 100")
	assert.Contains(t, out, "Invalid input: search query cannot be empty")
	assert.Contains(t, out, "Invalid input: invalid choice")

	st, err := h.roster.Get("S1")
	require.NoError(t, err)
	assert.Empty(t, st.Grades())
}

func TestApp_SortAndList(t *testing.T) {
	seed := func(h *harness) {
		for _, s := range []struct {
			id    string
			name  string
			grade float64
		}{{"A", "Zoe", 70}, {"B", "Yan", 90}, {"C", "Xia", 80}} {
			_, err := h.roster.Register(s.id, s.name)
			require.NoError(t, err)
			_, err = h.roster.AddGrade(s.id, s.grade)
			require.NoError(t, err)
		}
	}

	h := runScript(t, student.PolicyTiered, "6\n3\ny\n5\n", seed)
	out := h.out.String()

	sorted := out[strings.Index(out, "Students sorted by average (descending)"):]
	iB, iC, iA := strings.Index(sorted, "Yan"), strings.Index(sorted, "Xia"), strings.Index(sorted, "Zoe")
	assert.True(t, iB < iC && iC < iA, "expected Yan, Xia, Zoe order")

	listed := out[strings.Index(out, "All Students"):]
	assert.True(t, strings.Index(listed, "Zoe") < strings.Index(listed, "Yan"), "list keeps roster order")
}

func TestApp_Export(t *testing.T) {
	h := runScript(t, student.PolicyTiered, "7\n\n7\nout/class.xlsx\n")

	assert.Equal(t, []string{"report.xlsx", "out/class.xlsx"}, h.exported)
	assert.Contains(t, h.out.String(), "Report exported to out/class.xlsx.")
}

func TestApp_SaveFailureReported(t *testing.T) {
	failing := func(h *harness) { h.store.saveErr = errors.New("disk full") }

	h := runScript(t, student.PolicyTiered, "1\nS1\nAlice\n", failing)
	out := h.out.String()

	assert.Contains(t, out, "Student 'Alice' registered successfully.")
	assert.Contains(t, out, "Could not save data")
	assert.Contains(t, out, "Some changes may not have been saved. Goodbye!")
	assert.True(t, h.roster.Contains("S1"))
}

func TestParseGrades(t *testing.T) {
	got, err := ParseGrades(" 95, 85\t70.5 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{95, 85, 70.5}, got)

	got, err = ParseGrades("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseGrades("90 x")
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

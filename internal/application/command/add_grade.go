package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/validator"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD GRADE COMMAND
// Appends one or more grades to an existing student and persists the roster.
// ══════════════════════════════════════════════════════════════════════════════

// AddGradeCommand contains the grades to record.
type AddGradeCommand struct {
	// StudentID identifies the student.
	StudentID string `json:"student_id" validate:"not_blank"`

	// Grades are appended in order; all of them or none are recorded.
	Grades []float64 `json:"grades" validate:"min=1,dive,gte=0,lte=100"`
}

// AddGradeResult contains the state of the student after the update.
type AddGradeResult struct {
	StudentID string
	Name      string
	Added     []float64
	Average   float64

	// Saved is false when the grades were recorded in memory but the roster
	// could not be persisted.
	Saved bool
}

// AddGradeHandler handles the AddGradeCommand.
type AddGradeHandler struct {
	roster    *roster.Roster
	store     roster.Store
	validator *validator.Validator
	logger    *slog.Logger
}

// NewAddGradeHandler creates a new AddGradeHandler.
func NewAddGradeHandler(
	r *roster.Roster,
	store roster.Store,
	v *validator.Validator,
	logger *slog.Logger,
) *AddGradeHandler {
	if v == nil {
		v = validator.New()
	}
	return &AddGradeHandler{
		roster:    r,
		store:     store,
		validator: v,
		logger:    loggerOrDefault(logger).With("component", "add_grade"),
	}
}

// Handle executes the add grade command.
// An unknown student is reported before the grades are validated.
func (h *AddGradeHandler) Handle(ctx context.Context, cmd AddGradeCommand) (*AddGradeResult, error) {
	id := strings.TrimSpace(cmd.StudentID)
	if id != "" && !h.roster.Contains(id) {
		_, err := h.roster.Get(id)
		return nil, err
	}

	if err := h.validator.Validate("AddGrade", cmd); err != nil {
		return nil, err
	}

	st, err := h.roster.AddGrades(id, cmd.Grades...)
	if err != nil {
		return nil, err
	}

	result := &AddGradeResult{
		StudentID: st.ID(),
		Name:      st.Name(),
		Added:     append([]float64(nil), cmd.Grades...),
		Average:   st.Average(),
	}

	if err := flush(ctx, h.roster, h.store, h.logger, "add_grade"); err != nil {
		return result, err
	}
	result.Saved = true

	h.logger.Info("grades recorded", "student_id", st.ID(), "count", len(cmd.Grades))
	return result, nil
}

// Lookup returns the name of the student with id, or
// shared.ErrStudentNotFound.
func (h *AddGradeHandler) Lookup(id string) (string, error) {
	st, err := h.roster.Get(id)
	if err != nil {
		return "", err
	}
	return st.Name(), nil
}

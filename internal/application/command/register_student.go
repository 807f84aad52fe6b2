package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/validator"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Adds a new student with no grades and persists the roster.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data to register a student.
type RegisterStudentCommand struct {
	// StudentID is the caller-chosen unique identifier (case-sensitive).
	StudentID string `json:"student_id" validate:"not_blank,single_line"`

	// Name is the display name; it does not have to be unique.
	Name string `json:"name" validate:"not_blank,single_line"`
}

// RegisterStudentResult contains the result of a registration.
type RegisterStudentResult struct {
	StudentID string
	Name      string

	// Saved is false when the student was registered in memory but the
	// roster could not be persisted.
	Saved bool
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	roster    *roster.Roster
	store     roster.Store
	validator *validator.Validator
	logger    *slog.Logger
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(
	r *roster.Roster,
	store roster.Store,
	v *validator.Validator,
	logger *slog.Logger,
) *RegisterStudentHandler {
	if v == nil {
		v = validator.New()
	}
	return &RegisterStudentHandler{
		roster:    r,
		store:     store,
		validator: v,
		logger:    loggerOrDefault(logger).With("component", "register_student"),
	}
}

// Handle executes the register command.
// Validation errors, an ID or name the store cannot hold, and duplicate ids
// leave the roster untouched. If the save
// fails the student stays registered in memory; the result is returned with
// Saved=false together with the persistence error.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	if err := h.validator.Validate("RegisterStudent", cmd); err != nil {
		return nil, err
	}

	id, name := strings.TrimSpace(cmd.StudentID), strings.TrimSpace(cmd.Name)
	if err := roster.Accepts(h.store, id, name); err != nil {
		h.logger.Info("registration rejected by store", "student_id", id, "reason", err)
		return nil, err
	}

	st, err := h.roster.Register(id, name)
	if err != nil {
		h.logger.Info("registration rejected", "student_id", cmd.StudentID, "reason", err)
		return nil, err
	}

	result := &RegisterStudentResult{
		StudentID: st.ID(),
		Name:      st.Name(),
	}

	if err := flush(ctx, h.roster, h.store, h.logger, "register_student"); err != nil {
		return result, err
	}
	result.Saved = true

	h.logger.Info("student registered", "student_id", st.ID())
	return result, nil
}

// Exists reports whether id is already registered, so a caller can reject a
// duplicate before collecting the rest of the input.
func (h *RegisterStudentHandler) Exists(id string) bool {
	return h.roster.Contains(strings.TrimSpace(id))
}

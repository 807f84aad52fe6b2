package command

import (
	"context"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/roster"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE ROSTER COMMAND
// Explicit flush used on exit, so a save that failed earlier gets one more
// attempt before the process ends.
// ══════════════════════════════════════════════════════════════════════════════

// SaveRosterHandler writes the current roster to the store.
type SaveRosterHandler struct {
	roster *roster.Roster
	store  roster.Store
	logger *slog.Logger
}

// NewSaveRosterHandler creates a new SaveRosterHandler.
func NewSaveRosterHandler(r *roster.Roster, store roster.Store, logger *slog.Logger) *SaveRosterHandler {
	return &SaveRosterHandler{
		roster: r,
		store:  store,
		logger: loggerOrDefault(logger).With("component", "save_roster"),
	}
}

// Handle saves the roster and returns how many students were written.
func (h *SaveRosterHandler) Handle(ctx context.Context) (int, error) {
	if err := flush(ctx, h.roster, h.store, h.logger, "save_roster"); err != nil {
		return 0, err
	}
	return h.roster.Len(), nil
}

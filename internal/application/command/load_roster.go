package command

import (
	"context"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOAD ROSTER COMMAND
// Reads the persisted roster at startup. Never fails: an unreadable store
// degrades to an empty roster and the problem is reported in the result.
// ══════════════════════════════════════════════════════════════════════════════

// LoadRosterResult contains the loaded roster and every diagnostic produced.
type LoadRosterResult struct {
	// Roster is the loaded roster; never nil.
	Roster *roster.Roster

	// Skipped lists malformed or duplicate entries that were left out.
	Skipped []roster.Skipped

	// Missing is true when there was nothing persisted yet.
	Missing bool

	// Err is set when the store could not be read at all and the roster
	// started empty.
	Err error
}

// Degraded reports whether the load fell back to an empty roster.
func (r *LoadRosterResult) Degraded() bool {
	return r.Err != nil
}

// LoadRosterHandler handles loading the roster from a store.
type LoadRosterHandler struct {
	store  roster.Store
	logger *slog.Logger
}

// NewLoadRosterHandler creates a new LoadRosterHandler.
func NewLoadRosterHandler(store roster.Store, logger *slog.Logger) *LoadRosterHandler {
	return &LoadRosterHandler{
		store:  store,
		logger: loggerOrDefault(logger).With("component", "load_roster"),
	}
}

// Handle loads the roster.
func (h *LoadRosterHandler) Handle(ctx context.Context) *LoadRosterResult {
	loaded, err := h.store.Load(ctx)
	if err != nil {
		if !shared.IsPersistence(err) {
			err = shared.Persistence("Load", "could not read roster", err)
		}
		h.logger.Error("roster unreadable, starting with an empty roster", "error", err)
		return &LoadRosterResult{
			Roster: roster.New(),
			Err:    err,
		}
	}

	r, skipped := roster.FromLoad(loaded)
	for _, s := range skipped {
		h.logger.Warn("skipped persisted entry",
			"position", s.Position,
			"raw", s.Raw,
			"reason", s.Reason,
		)
	}

	if loaded.Missing {
		h.logger.Info("no existing data found, starting fresh")
	} else {
		h.logger.Info("roster loaded", "students", r.Len(), "skipped", len(skipped))
	}

	return &LoadRosterResult{
		Roster:  r,
		Skipped: skipped,
		Missing: loaded.Missing,
	}
}

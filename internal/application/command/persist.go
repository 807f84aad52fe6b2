// Package command contains write operations (CQRS - Commands).
// Every command that changes the roster flushes it to the store before
// returning, so the persisted copy trails memory only when a save fails.
package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// flush writes the whole roster to the store. A failure is wrapped as a
// persistence error; the in-memory roster keeps the mutation.
func flush(ctx context.Context, r *roster.Roster, store roster.Store, log *slog.Logger, op string) error {
	start := time.Now()
	if err := store.Save(ctx, r.All()); err != nil {
		log.Error("failed to save roster",
			"operation", op,
			"students", r.Len(),
			"error", err,
		)
		if shared.IsPersistence(err) {
			return err
		}
		return shared.Persistence("Save", "could not save roster", err)
	}

	log.Debug("roster saved",
		"operation", op,
		"students", r.Len(),
		"latency", time.Since(start),
	)
	return nil
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

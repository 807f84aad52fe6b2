package persistence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
)

// guardedStore runs saves through a circuit breaker. Once a remote server
// has refused several saves in a row, later saves fail at once until the
// breaker lets a trial save through.
type guardedStore struct {
	roster.Store
	breaker *circuitbreaker.CircuitBreaker
}

// Guard wraps store so its saves go through breaker. A nil breaker gets
// circuitbreaker.StoreBreaker with state changes logged.
func Guard(store roster.Store, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger) roster.Store {
	if breaker == nil {
		if logger == nil {
			logger = slog.Default()
		}
		breaker = circuitbreaker.StoreBreaker("roster-store",
			circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
				logger.Warn("store circuit changed state",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			}),
		)
	}
	return &guardedStore{Store: store, breaker: breaker}
}

func (g *guardedStore) Save(ctx context.Context, students []*student.Student) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.Store.Save(ctx, students)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return shared.Persistence("Save", "store is unavailable, save skipped", err)
	}
	return err
}

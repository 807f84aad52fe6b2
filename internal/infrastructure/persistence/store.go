// Package persistence selects and opens the roster store configured for the
// run. The concrete stores live in the sub-packages.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/bbolt"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/file"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/mongodb"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/sqlite"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
	"github.com/alem-hub/gradebook/pkg/retry"
)

// Driver names a store implementation.
type Driver string

const (
	DriverJSON     Driver = "json"
	DriverLines    Driver = "lines"
	DriverSQLite   Driver = "sqlite"
	DriverBolt     Driver = "bbolt"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverMongo    Driver = "mongodb"
)

// Drivers lists every supported driver.
func Drivers() []Driver {
	return []Driver{DriverJSON, DriverLines, DriverSQLite, DriverBolt, DriverPostgres, DriverRedis, DriverMongo}
}

// IsValid checks that the driver is known.
func (d Driver) IsValid() bool {
	for _, known := range Drivers() {
		if d == known {
			return true
		}
	}
	return false
}

// IsRemote reports whether the driver talks to a server over the network.
func (d Driver) IsRemote() bool {
	return d == DriverPostgres || d == DriverRedis || d == DriverMongo
}

// ParseDriver parses a driver name case-insensitively.
func ParseDriver(s string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return DriverJSON, nil
	}
	if !d.IsValid() {
		return "", shared.NewDomainError("store", "ParseDriver", shared.ErrInvalidFormat,
			fmt.Sprintf("unknown store driver %q", s))
	}
	return d, nil
}

// DefaultDataFile is the file a local driver uses when none is configured.
// Each driver has its own so switching drivers never overwrites another
// driver's roster. Remote drivers have none.
func DefaultDataFile(d Driver) string {
	switch d {
	case DriverJSON:
		return "students.json"
	case DriverLines:
		return "students.txt"
	case DriverSQLite:
		return "students.db"
	case DriverBolt:
		return "students.bolt"
	default:
		return ""
	}
}

// Options selects and parameterizes a store.
type Options struct {
	Driver Driver

	// DataFile is the path used by the file-based drivers.
	// Empty means DefaultDataFile(Driver).
	DataFile string

	// DatabaseURL is the PostgreSQL connection URL.
	DatabaseURL string

	// Redis holds the Redis connection settings.
	Redis redis.Config

	// MongoURL and MongoDatabase locate the MongoDB roster.
	MongoURL      string
	MongoDatabase string

	// Timeout bounds connecting to a remote store, retries included.
	Timeout time.Duration

	// Retrier overrides the connection retry policy for remote stores.
	Retrier *retry.Retrier

	// Breaker overrides the circuit breaker around remote saves.
	Breaker *circuitbreaker.CircuitBreaker
}

// Open opens the store named by opts.Driver. Remote stores are dialled with
// retries and their saves are guarded by a circuit breaker.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (roster.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "driver", string(opts.Driver))

	if !opts.Driver.IsRemote() {
		return openLocal(opts)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	retrier := opts.Retrier
	if retrier == nil {
		retrier = retry.DatabaseRetrier(
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				logger.Warn("store connection failed, retrying",
					"attempt", attempt,
					"delay", delay,
					"error", err,
				)
			}),
		)
	}

	start := time.Now()
	store, err := retry.DoValue(ctx, retrier, func(ctx context.Context) (roster.Store, error) {
		return openRemote(ctx, opts)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("store connected", "latency", time.Since(start))
	return Guard(store, opts.Breaker, logger), nil
}

func openLocal(opts Options) (roster.Store, error) {
	if strings.TrimSpace(opts.DataFile) == "" {
		opts.DataFile = DefaultDataFile(opts.Driver)
	}
	switch opts.Driver {
	case DriverJSON:
		return asStore(file.NewJSONStore(opts.DataFile))
	case DriverLines:
		return asStore(file.NewLinesStore(opts.DataFile))
	case DriverSQLite:
		return asStore(sqlite.Open(opts.DataFile))
	case DriverBolt:
		return asStore(bbolt.Open(opts.DataFile))
	default:
		return nil, shared.Persistence("Open", "select store",
			fmt.Errorf("unknown store driver %q", opts.Driver))
	}
}

// openRemote makes one connection attempt. Missing settings are permanent
// failures so they are not retried.
func openRemote(ctx context.Context, opts Options) (roster.Store, error) {
	switch opts.Driver {
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, retry.Permanent(missingSetting("DATABASE_URL"))
		}
		return asStore(postgres.Open(ctx, opts.DatabaseURL))
	case DriverRedis:
		if opts.Redis.URL == "" {
			return nil, retry.Permanent(missingSetting("REDIS_URL"))
		}
		return asStore(redis.Open(ctx, opts.Redis))
	case DriverMongo:
		if opts.MongoURL == "" {
			return nil, retry.Permanent(missingSetting("MONGODB_URL"))
		}
		return asStore(mongodb.Open(ctx, opts.MongoURL, opts.MongoDatabase))
	default:
		return nil, retry.Permanent(shared.Persistence("Open", "select store",
			fmt.Errorf("unknown store driver %q", opts.Driver)))
	}
}

// asStore keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer.
func asStore[S roster.Store](store S, err error) (roster.Store, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}

func missingSetting(name string) error {
	return shared.Persistence("Open", "store settings incomplete", fmt.Errorf("%s is required", name))
}

package roster

import (
	"context"
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/student"
)

// Store is the persisted representation of a roster.
// Implementations live in infrastructure/persistence.
type Store interface {
	// Load reads every entry. A missing source returns an empty result with
	// Missing set, not an error. Malformed entries are skipped and reported in
	// LoadResult.Skipped. Any returned error means nothing could be read.
	Load(ctx context.Context) (*LoadResult, error)

	// Save replaces the persisted content with the given records. The write
	// is all-or-nothing from the caller's point of view.
	Save(ctx context.Context, students []*student.Student) error

	// Close releases the underlying resources.
	Close() error
}

// Acceptor is implemented by stores that cannot represent every valid
// identity. Accepts reports, as a validation error, whether a student with
// this ID and name could be saved; callers check it before changing the
// roster so one unstorable entry never blocks later saves.
type Acceptor interface {
	Accepts(id, name string) error
}

// Accepts asks store whether id and name can be saved. Stores that do not
// implement Acceptor accept everything.
func Accepts(store Store, id, name string) error {
	if a, ok := store.(Acceptor); ok {
		return a.Accepts(id, name)
	}
	return nil
}

// LoadResult is what a Store hands back from Load.
type LoadResult struct {
	// Students are the well-formed records in stored order.
	Students []*student.Student

	// Skipped lists the malformed entries that were left out.
	Skipped []Skipped

	// Missing is true when the source did not exist yet.
	Missing bool
}

// Skipped describes one persisted entry that could not be loaded.
type Skipped struct {
	// Position is the 1-based line number or array index of the entry.
	Position int

	// Raw is the entry as it was stored (possibly truncated by the store).
	Raw string

	// Reason explains why the entry was rejected.
	Reason error
}

// String renders the diagnostic for logs and console output.
func (s Skipped) String() string {
	return fmt.Sprintf("entry %d skipped (%v): %q", s.Position, s.Reason, s.Raw)
}

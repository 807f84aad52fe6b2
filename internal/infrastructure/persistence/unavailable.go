package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// unavailableStore stands in for a store that could not be opened. The
// session still runs on an empty roster; nothing it does reaches storage.
type unavailableStore struct {
	driver Driver
	cause  error
}

// Unavailable returns a store whose Load reports cause and whose every Save
// fails with a persistence error wrapping it.
func Unavailable(driver Driver, cause error) roster.Store {
	if cause == nil {
		cause = errors.New("store is not open")
	}
	return &unavailableStore{driver: driver, cause: cause}
}

func (u *unavailableStore) Load(context.Context) (*roster.LoadResult, error) {
	return nil, shared.Persistence("Load",
		fmt.Sprintf("%s store could not be opened", u.driver), u.cause)
}

func (u *unavailableStore) Save(context.Context, []*student.Student) error {
	return shared.Persistence("Save",
		fmt.Sprintf("%s store could not be opened, save skipped", u.driver), u.cause)
}

func (u *unavailableStore) Close() error {
	return nil
}

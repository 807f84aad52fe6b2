package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gradebook.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.True(t, shared.IsPersistence(err))
}

func TestLoad_EmptyIsMissing(t *testing.T) {
	store, _ := openStore(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Missing)
	assert.Empty(t, got.Students)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	alice, err := student.Restore("S1", "Alice", []float64{95, 85, 87.5})
	require.NoError(t, err)
	bob, err := student.Restore("B0", "Bob", nil)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, []*student.Student{alice, bob}))
	// A second save replaces rather than appends.
	require.NoError(t, store.Save(ctx, []*student.Student{alice, bob}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Missing)
	require.Len(t, got.Students, 2)

	assert.Equal(t, "S1", got.Students[0].ID())
	assert.Equal(t, []float64{95, 85, 87.5}, got.Students[0].Grades())
	assert.Equal(t, "B0", got.Students[1].ID())
	assert.Empty(t, got.Students[1].Grades())
}

func TestLoad_SkipsInvalidRows(t *testing.T) {
	ctx := context.Background()
	store, path := openStore(t)

	alice, err := student.Restore("S1", "Alice", []float64{90})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, []*student.Student{alice}))

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(`INSERT INTO students (id, name, position) VALUES ('S2', '', 1)`)
	require.NoError(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Students, 1)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, 2, got.Skipped[0].Position)
}

package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "gradebook.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.True(t, shared.IsPersistence(err))
}

func TestLoad_FreshIsMissing(t *testing.T) {
	store := openTempStore(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Missing)
}

func TestRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	// Insertion order differs from key order.
	zed, err := student.Restore("Z9", "Zed", []float64{50})
	require.NoError(t, err)
	amy, err := student.Restore("A1", "Amy", []float64{99.5, 100})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, []*student.Student{zed, amy}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Missing)
	require.Len(t, got.Students, 2)
	assert.Equal(t, "Z9", got.Students[0].ID())
	assert.Equal(t, "A1", got.Students[1].ID())
	assert.Equal(t, []float64{99.5, 100}, got.Students[1].Grades())

	require.NoError(t, store.Save(ctx, []*student.Student{amy}))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Students, 1)
	assert.Equal(t, "A1", got.Students[0].ID())
}

func TestLoad_SkipsCorruptValue(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	amy, err := student.Restore("A1", "Amy", nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, []*student.Student{amy}))

	require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(studentsBucket)).Put([]byte("B2"), []byte("{broken"))
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Students, 1)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, 2, got.Skipped[0].Position)
	assert.True(t, shared.IsValidation(got.Skipped[0].Reason))
}

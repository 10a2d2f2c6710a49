package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBlobStore runs the behavior every backend has to share.
func exerciseBlobStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "cart:missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "cart:s1", []byte(`[{"productId":"p1"}]`)))
	value, err := store.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[{"productId":"p1"}]`, string(value))

	require.NoError(t, store.Set(ctx, "cart:s1", []byte(`[]`)))
	value, err = store.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	require.NoError(t, store.Set(ctx, "checkoutInfo:s1", []byte(`{}`)))

	require.NoError(t, store.Remove(ctx, "cart:s1"))
	_, err = store.Get(ctx, "cart:s1")
	assert.ErrorIs(t, err, ErrNotFound)

	// other keys are untouched
	value, err = store.Get(ctx, "checkoutInfo:s1")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(value))

	assert.NoError(t, store.Remove(ctx, "cart:never-written"))
}

func TestMemoryStore(t *testing.T) {
	exerciseBlobStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	exerciseBlobStore(t, store)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "cart:user/with/slashes", []byte(`[1]`)))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	value, err := reopened.Get(ctx, "cart:user/with/slashes")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(value))
}

func TestFileStore_LongKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	session := strings.Repeat("s", 128)
	for _, key := range []string{"cart:" + session, "checkoutInfo:" + session} {
		require.NoError(t, store.Set(ctx, key, []byte(`{"ok":true}`)), key)
		value, err := store.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, `{"ok":true}`, string(value))
		assert.LessOrEqual(t, len(filepath.Base(store.path(key))), 255)
	}

	_, err = store.Get(ctx, "cart:"+session+"x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RunMigrations())
	// running migrations twice is a no-op
	require.NoError(t, store.RunMigrations())

	exerciseBlobStore(t, store)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestOpen_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	store, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "cart:s1", []byte(`[]`)))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer reopened.Close()
	value, err := reopened.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "etcd"})
	assert.ErrorContains(t, err, `unknown storage driver "etcd"`)
}

package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteBlobs, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	b, err := NewSQLite(path)
	require.NoError(t, err)

	return b, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	b, path := newTestSQLite(t)
	assert.NoError(t, b.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = 'kv'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv", name)
}

func TestSQLiteGetMissing(t *testing.T) {
	t.Parallel()

	b, _ := newTestSQLite(t)
	defer b.Close()

	_, err := b.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLitePutOverwrites(t *testing.T) {
	t.Parallel()

	b, _ := newTestSQLite(t)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, KeyTrades, []byte("first")))
	require.NoError(t, b.Put(ctx, KeyTrades, []byte("second")))

	got, err := b.Get(ctx, KeyTrades)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestSQLiteKeysSorted(t *testing.T) {
	t.Parallel()

	b, _ := newTestSQLite(t)
	defer b.Close()
	ctx := context.Background()

	for _, k := range []string{KeyTrades, KeyAccounts, KeyOnboarded} {
		require.NoError(t, b.Put(ctx, k, []byte("x")))
	}

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyAccounts, KeyOnboarded, KeyTrades}, keys)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	b, path := newTestSQLite(t)
	ctx := context.Background()

	store := NewStore(b, JSONCodec{}, testLogger())
	saved, err := store.SaveTrade(ctx, Trade{AccountID: "default", Date: "2024-03-04", Symbol: "eur/usd", Result: ResultWin, PnL: 50})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := NewStore(reopened, JSONCodec{}, testLogger()).Trade(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", got.Symbol)
	assert.InDelta(t, 50.0, got.PnL, 1e-9)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "j.db"), Codec: "msgpack"}, testLogger())
	require.NoError(t, err)
	accs, err := s.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accs, 1)
	assert.NoError(t, s.Close())

	mem, err := Open(ctx, Options{Driver: DriverMemory}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryBlobs{}, mem.Blobs())

	_, err = Open(ctx, Options{Driver: "mongo"}, testLogger())
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverMemory, Codec: "xml"}, testLogger())
	assert.Error(t, err)
}

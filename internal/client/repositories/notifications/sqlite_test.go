package notifications

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE notification_state (
  id        TEXT PRIMARY KEY,
  is_read   INTEGER NOT NULL DEFAULT 0,
  is_dismissed INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestMarkRead_ThenGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.MarkRead(ctx, "n1"))

	s, err := r.Get(ctx, "n1")
	require.NoError(t, err)
	require.True(t, s.Read)
	require.False(t, s.Dismissed)
}

func TestMarkDismissed_PreservesReadFlag(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.MarkRead(ctx, "n1"))
	require.NoError(t, r.MarkDismissed(ctx, "n1"))

	s, err := r.Get(ctx, "n1")
	require.NoError(t, err)
	require.True(t, s.Read)
	require.True(t, s.Dismissed)
}

func TestMarkRead_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.MarkRead(ctx, "n1"))
	require.NoError(t, r.MarkRead(ctx, "n1"))

	states, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
}

func TestPrune_DropsDeadIDs(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.MarkRead(ctx, "live"))
	require.NoError(t, r.MarkRead(ctx, "dead"))

	require.NoError(t, r.Prune(ctx, []string{"live"}))

	states, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	require.Contains(t, states, "live")
}

func TestPrune_EmptyLiveSetClearsAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.MarkRead(ctx, "n1"))
	require.NoError(t, r.Prune(ctx, nil))

	states, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, states)
}

package repo

import (
	"context"
	"testing"
	"time"

	dom "todoapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLiteTodoRepo {
	t.Helper()
	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteTodoRepo(db)
}

func TestSQLiteTodoRepo(t *testing.T) {
	runRepoSuite(t, func(t *testing.T) TodoRepo { return newSQLiteRepo(t) })
}

func TestSQLiteTodoRepo_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/todo.db"

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	created, err := NewSQLiteTodoRepo(db).Create(ctx, "survive restart", true)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	got, err := NewSQLiteTodoRepo(db).GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSQLiteTodoRepo_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteRepo(t)

	first, err := r.Create(ctx, "first", false)
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, first.ID))

	second, err := r.Create(ctx, "second", false)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestSQLiteTime_Scan(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 123000000, time.UTC)
	for _, v := range []any{
		"2024-05-01 12:30:00.123000",
		[]byte("2024-05-01 12:30:00.123000"),
		"2024-05-01T12:30:00.123Z",
		want.In(time.FixedZone("x", 3600)),
	} {
		var st sqliteTime
		require.NoError(t, st.Scan(v), "%v", v)
		assert.True(t, want.Equal(st.t), "%v", v)
	}

	var st sqliteTime
	assert.Error(t, st.Scan("yesterday"))
	assert.Error(t, st.Scan(42.5))
}

// runRepoSuite checks the TodoRepo contract against any engine.
func runRepoSuite(t *testing.T, newRepo func(t *testing.T) TodoRepo) {
	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, "  Write tests  ", false)
		require.NoError(t, err)
		assert.Positive(t, created.ID)
		assert.Equal(t, "Write tests", created.Title)
		assert.False(t, created.Completed)
		assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("create rejects blank title", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Create(ctx, " \t ", false)
		assert.ErrorAs(t, err, new(*dom.ValidationError))

		list, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("list is empty slice when no rows", func(t *testing.T) {
		list, err := newRepo(t).List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Len(t, list, 0)
	})

	t.Run("list newest first", func(t *testing.T) {
		r := newRepo(t)
		for _, title := range []string{"A", "B", "C"} {
			_, err := r.Create(ctx, title, false)
			require.NoError(t, err)
		}
		list, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"C", "B", "A"}, []string{list[0].Title, list[1].Title, list[2].Title})
	})

	t.Run("list orders by created_at before id", func(t *testing.T) {
		r := newRepo(t)
		base := time.Now().UTC().Truncate(time.Microsecond)
		restore := now
		t.Cleanup(func() { now = restore })

		now = func() time.Time { return base }
		_, err := r.Create(ctx, "later", false)
		require.NoError(t, err)
		now = func() time.Time { return base.Add(-time.Hour) }
		_, err = r.Create(ctx, "earlier", false)
		require.NoError(t, err)

		list, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "later", list[0].Title)
		assert.Equal(t, "earlier", list[1].Title)
	})

	t.Run("update completed leaves title", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, "Toggle me", false)
		require.NoError(t, err)

		done := true
		updated, err := r.Update(ctx, created.ID, dom.TodoPatch{Completed: &done})
		require.NoError(t, err)
		assert.True(t, updated.Completed)
		assert.Equal(t, "Toggle me", updated.Title)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("update title leaves completed", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, "old", true)
		require.NoError(t, err)

		title := "  new  "
		updated, err := r.Update(ctx, created.ID, dom.TodoPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Title)
		assert.True(t, updated.Completed)
	})

	t.Run("empty patch returns record unchanged", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, "same", false)
		require.NoError(t, err)
		updated, err := r.Update(ctx, created.ID, dom.TodoPatch{})
		require.NoError(t, err)
		assert.Equal(t, created, updated)
	})

	t.Run("update blank title is rejected and not applied", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, "keep", false)
		require.NoError(t, err)

		blank := "   "
		_, err = r.Update(ctx, created.ID, dom.TodoPatch{Title: &blank})
		assert.ErrorAs(t, err, new(*dom.ValidationError))

		got, err := r.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "keep", got.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, dom.ErrNotFound)

		done := true
		_, err = r.Update(ctx, 9999, dom.TodoPatch{Completed: &done})
		assert.ErrorIs(t, err, dom.ErrNotFound)

		assert.ErrorIs(t, r.Delete(ctx, 9999), dom.ErrNotFound)
	})

	t.Run("delete removes record", func(t *testing.T) {
		r := newRepo(t)
		keep, err := r.Create(ctx, "keep", false)
		require.NoError(t, err)
		gone, err := r.Create(ctx, "gone", false)
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, gone.ID))

		_, err = r.GetByID(ctx, gone.ID)
		assert.ErrorIs(t, err, dom.ErrNotFound)
		assert.ErrorIs(t, r.Delete(ctx, gone.ID), dom.ErrNotFound)

		list, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, keep.ID, list[0].ID)
	})
}

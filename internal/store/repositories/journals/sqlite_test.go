package journals

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/maitelab/maitenotas/internal/common"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE journal (
		book_id INTEGER,
		parent_id INTEGER,
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		journal_name BLOB NOT NULL,
		journal_text BLOB NOT NULL
	);`)
	require.NoError(t, err)
	return db
}

func insert(t *testing.T, r *SQLiteRepository, book, parent int64, name string) int64 {
	t.Helper()
	id, err := r.Insert(context.Background(), Record{
		BookID: book, ParentID: parent, Name: []byte(name), Text: []byte("text of " + name),
	})
	require.NoError(t, err)
	return id
}

func TestInsert_AssignsIncreasingIDs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	require.EqualValues(t, 1, insert(t, r, 2, 0, "a"))
	require.EqualValues(t, 2, insert(t, r, 2, 0, "b"))
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	insert(t, r, 2, 0, "a")
	id := insert(t, r, 2, 0, "b")
	require.NoError(t, r.Delete(ctx, id))

	require.EqualValues(t, 3, insert(t, r, 2, 0, "c"))
}

func TestGetText(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	id := insert(t, r, 2, 0, "a")

	got, err := r.GetText(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("text of a"), got)

	_, err = r.GetText(ctx, 99)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateTextAndName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	id := insert(t, r, 2, 0, "a")

	require.NoError(t, r.UpdateText(ctx, id, []byte("new body")))
	require.NoError(t, r.UpdateName(ctx, id, []byte("new name")))

	got, err := r.GetText(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("new body"), got)

	list, err := r.ListByBook(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, []byte("new name"), list[0].Name)
}

func TestUpdateMissingIsNoop(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.UpdateText(ctx, 7, []byte("x")))
	require.NoError(t, r.UpdateName(ctx, 7, []byte("x")))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDelete_IdempotentAndNoCascade(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	parent := insert(t, r, 2, 0, "parent")
	child := insert(t, r, 2, parent, "child")

	require.NoError(t, r.Delete(ctx, parent))
	require.NoError(t, r.Delete(ctx, parent))

	list, err := r.ListByBook(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, child, list[0].ID)
	require.Equal(t, parent, list[0].ParentID)
}

func TestListByBook_OrderedAndFiltered(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := insert(t, r, 2, 0, "a")
	insert(t, r, 3, 0, "other book")
	b := insert(t, r, 2, 0, "b")
	a1 := insert(t, r, 2, a, "a1")
	b1 := insert(t, r, 2, b, "b1")
	a2 := insert(t, r, 2, a, "a2")

	got, err := r.ListByBook(ctx, 2)
	require.NoError(t, err)

	want := []Record{
		{BookID: 2, ParentID: 0, ID: a, Name: []byte("a")},
		{BookID: 2, ParentID: 0, ID: b, Name: []byte("b")},
		{BookID: 2, ParentID: a, ID: a1, Name: []byte("a1")},
		{BookID: 2, ParentID: a, ID: a2, Name: []byte("a2")},
		{BookID: 2, ParentID: b, ID: b1, Name: []byte("b1")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListByBook mismatch (-want +got):\n%s", diff)
	}
}

func TestListByBook_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.ListByBook(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Insert(ctx, Record{Name: []byte("a"), Text: []byte("b")})
	require.ErrorContains(t, err, "failed to insert journal")

	_, err = r.GetText(ctx, 1)
	require.ErrorContains(t, err, "failed to get journal 1")

	err = r.UpdateText(ctx, 1, []byte("x"))
	require.ErrorContains(t, err, "failed to update journal_text of journal 1")

	err = r.Delete(ctx, 1)
	require.ErrorContains(t, err, "failed to delete journal 1")

	_, err = r.ListByBook(ctx, 2)
	require.ErrorContains(t, err, "failed to select journals")

	_, err = r.Count(ctx)
	require.ErrorContains(t, err, "failed to count journals")
}

package services

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/cryptox"
	"github.com/maitelab/maitenotas/internal/logging"
	"github.com/maitelab/maitenotas/internal/store"
	"github.com/maitelab/maitenotas/internal/tree"
)

const pw = "s3cret"

func newService(t *testing.T) (DiaryService, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), common.DataFileName))
	return NewDiaryService(st, logging.Discard()), st
}

func created(t *testing.T, opts CreateOptions) (DiaryService, *Session) {
	t.Helper()
	svc, _ := newService(t)
	sess, err := svc.Create(context.Background(), pw, pw, "Diary", opts)
	require.NoError(t, err)
	return svc, sess
}

type shape struct {
	Name     string
	Children []shape
}

func shapeOf(t *tree.Tree, h tree.Handle) shape {
	s := shape{Name: t.Node(h).Name}
	for _, c := range t.Children(h) {
		s.Children = append(s.Children, shapeOf(t, c))
	}
	return s
}

func TestCreate_SeedsFirstBook(t *testing.T) {
	svc, sess := created(t, CreateOptions{})
	ctx := context.Background()

	assert.Equal(t, common.FirstDiaryID, sess.BookID)
	assert.Zero(t, sess.Selected())

	tr, err := svc.Tree(ctx, sess)
	require.NoError(t, err)

	want := shape{Name: "Diary", Children: []shape{
		{Name: "Leaf one of Diary"},
		{Name: "Leaf two of Diary"},
	}}
	if diff := cmp.Diff(want, shapeOf(tr, tree.RootHandle)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	text, err := svc.Select(ctx, sess, 1, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(text, "Diary"))
}

func TestCreate_NextNoteIsThree(t *testing.T) {
	svc, sess := created(t, CreateOptions{})

	id, err := svc.AddLeaf(context.Background(), sess, common.RootParentID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, id)
}

func TestCreate_PasswordMismatch(t *testing.T) {
	svc, st := newService(t)

	_, err := svc.Create(context.Background(), "a", "b", "Diary", CreateOptions{})
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.False(t, st.Exists())
}

func TestCreate_StoreExists(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, pw, pw, "Diary", CreateOptions{})
	require.NoError(t, err)

	_, err = svc.Create(ctx, pw, pw, "Again", CreateOptions{})
	require.ErrorIs(t, err, ErrStoreExists)

	info, err := st.Info(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, info.Books)
}

func TestCreate_StoreUnavailable(t *testing.T) {
	svc := NewDiaryService(&failingStore{}, logging.Discard())

	_, err := svc.Create(context.Background(), pw, pw, "Diary", CreateOptions{})
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestCreate_SeedingFailureWipesKey(t *testing.T) {
	tests := []struct {
		name   string
		bookOK bool
	}{
		{"book", false},
		{"sample notes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &halfStore{bookOK: tt.bookOK}
			svc := NewDiaryService(st, logging.Discard())

			sess, err := svc.Create(context.Background(), pw, pw, "Diary", CreateOptions{})
			require.ErrorIs(t, err, ErrStoreIncomplete)
			assert.Nil(t, sess)
			assert.Contains(t, err.Error(), "remove the data file")
			assert.True(t, st.key.IsZero(), "derived key must be wiped")
		})
	}
}

func TestUnlock(t *testing.T) {
	tests := []struct {
		name string
		opts CreateOptions
	}{
		{"legacy", CreateOptions{}},
		{"salted pbkdf2", CreateOptions{Salted: true}},
		{"salted argon2id", CreateOptions{Salted: true, KDF: cryptox.KDFArgon2id}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newService(t)
			ctx := context.Background()
			_, err := svc.Create(ctx, pw, pw, "Diary", tt.opts)
			require.NoError(t, err)

			sess, err := svc.Unlock(ctx, pw)
			require.NoError(t, err)
			assert.Equal(t, common.FirstDiaryID, sess.BookID)

			tr, err := svc.Tree(ctx, sess)
			require.NoError(t, err)
			assert.Equal(t, 3, tr.Len())

			_, err = svc.Unlock(ctx, "nope")
			require.ErrorIs(t, err, ErrInvalidPassword)

			info, err := st.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.opts.Salted, info.Salted)
		})
	}
}

func TestUnlock_NoStore(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Unlock(context.Background(), pw)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Info(context.Background())
	require.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSelect_SavesPreviousSelection(t *testing.T) {
	svc, sess := created(t, CreateOptions{})
	ctx := context.Background()

	_, err := svc.Select(ctx, sess, 1, "ignored, nothing selected yet")
	require.NoError(t, err)
	assert.EqualValues(t, 1, sess.Selected())

	text, err := svc.Select(ctx, sess, 2, "edited one")
	require.NoError(t, err)
	assert.Contains(t, text, "Diary")
	assert.EqualValues(t, 2, sess.Selected())

	text, err = svc.Select(ctx, sess, 1, text)
	require.NoError(t, err)
	assert.Equal(t, "edited one", text)
}

func TestRead_KeepsSelection(t *testing.T) {
	svc, sess := created(t, CreateOptions{})
	ctx := context.Background()

	text, err := svc.Read(ctx, sess, 2)
	require.NoError(t, err)
	assert.Contains(t, text, "Diary")
	assert.Zero(t, sess.Selected())

	_, err = svc.Select(ctx, sess, 1, "")
	require.NoError(t, err)
	_, err = svc.Read(ctx, sess, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sess.Selected())

	missing, err := svc.Read(ctx, sess, 99)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSaveSelected(t *testing.T) {
	svc, sess := created(t, CreateOptions{})
	ctx := context.Background()

	require.ErrorIs(t, svc.SaveSelected(ctx, sess, "x"), ErrNothingSelected)

	_, err := svc.Select(ctx, sess, 2, "")
	require.NoError(t, err)
	require.NoError(t, svc.SaveSelected(ctx, sess, "saved"))

	text, err := svc.Select(ctx, sess, 2, "saved")
	require.NoError(t, err)
	assert.Equal(t, "saved", text)
}

func TestAddRenameRemove(t *testing.T) {
	svc, sess := created(t, CreateOptions{})
	ctx := context.Background()

	child, err := svc.AddLeaf(ctx, sess, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Rename(ctx, sess, child, "Child"))

	tr, err := svc.Tree(ctx, sess)
	require.NoError(t, err)
	h, ok := tr.Lookup(child)
	require.True(t, ok)
	assert.Equal(t, "Child", tr.Node(h).Name)
	parent, _ := tr.Lookup(1)
	assert.Equal(t, parent, tr.Node(h).Parent)

	_, err = svc.Select(ctx, sess, 1, "")
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, sess, 1))
	assert.Zero(t, sess.Selected(), "removing the selection clears it")

	tr, err = svc.Tree(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tr.Orphans(), 1)
	assert.Equal(t, child, tr.Orphans()[0].ID)
}

func TestTree_LogsOrphans(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "debug", "text")
	require.NoError(t, err)

	st := store.New(filepath.Join(t.TempDir(), common.DataFileName))
	svc := NewDiaryService(st, log)
	ctx := context.Background()
	sess, err := svc.Create(ctx, pw, pw, "Diary", CreateOptions{})
	require.NoError(t, err)

	child, err := svc.AddLeaf(ctx, sess, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, sess, 2))

	_, err = svc.Tree(ctx, sess)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "orphaned note")
	assert.Contains(t, buf.String(), "note_id="+itoa(child))
}

func TestWipedSession(t *testing.T) {
	svc, sess := created(t, CreateOptions{})
	ctx := context.Background()
	sess.Wipe()
	require.True(t, sess.Closed())

	_, err := svc.Tree(ctx, sess)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = svc.Select(ctx, sess, 1, "")
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = svc.Read(ctx, sess, 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = svc.AddLeaf(ctx, sess, 0)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, svc.Rename(ctx, sess, 1, "x"), ErrSessionClosed)
	assert.ErrorIs(t, svc.Remove(ctx, sess, 1), ErrSessionClosed)
	assert.ErrorIs(t, svc.SaveSelected(ctx, sess, "x"), ErrSessionClosed)
}

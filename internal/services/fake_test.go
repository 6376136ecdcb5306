package services

import (
	"context"
	"strconv"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/cryptox"
	"github.com/maitelab/maitenotas/internal/store"
	"github.com/maitelab/maitenotas/internal/tree"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// failingStore reports a missing file and fails every storage call.
type failingStore struct{}

func (failingStore) Exists() bool { return false }
func (failingStore) Initialize(context.Context, cryptox.Key, string, ...store.InitOption) bool {
	return false
}
func (failingStore) VerifyPassword(context.Context, cryptox.Key, string) bool { return false }
func (failingStore) KeyParams(context.Context) (cryptox.KeyParams, error) {
	return cryptox.KeyParams{}, common.ErrStorageUnavailable
}
func (failingStore) CreateBook(context.Context, cryptox.Key, string) (int64, error) {
	return 0, common.ErrStorageUnavailable
}
func (failingStore) GetBookName(context.Context, cryptox.Key, int64) (string, error) {
	return "", common.ErrStorageUnavailable
}
func (failingStore) CreateNote(context.Context, cryptox.Key, int64, int64, string, string) (int64, error) {
	return 0, common.ErrStorageUnavailable
}
func (failingStore) GetNoteText(context.Context, cryptox.Key, int64) (string, error) {
	return "", common.ErrStorageUnavailable
}
func (failingStore) UpdateNoteText(context.Context, cryptox.Key, int64, string) error {
	return common.ErrStorageUnavailable
}
func (failingStore) UpdateNoteName(context.Context, cryptox.Key, int64, string) error {
	return common.ErrStorageUnavailable
}
func (failingStore) DeleteNote(context.Context, int64) error { return common.ErrStorageUnavailable }
func (failingStore) ListNoteTree(context.Context, cryptox.Key, int64) ([]tree.Row, error) {
	return nil, common.ErrStorageUnavailable
}
func (failingStore) Info(context.Context) (store.Info, error) {
	return store.Info{}, common.ErrStorageUnavailable
}

// halfStore initializes successfully and keeps the key it was given, then
// fails from the step selected by bookOK onward.
type halfStore struct {
	failingStore
	bookOK bool
	key    cryptox.Key
}

func (h *halfStore) Initialize(_ context.Context, key cryptox.Key, _ string, _ ...store.InitOption) bool {
	h.key = key
	return true
}

func (h *halfStore) CreateBook(context.Context, cryptox.Key, string) (int64, error) {
	if h.bookOK {
		return common.FirstDiaryID, nil
	}
	return 0, common.ErrStorage
}

var _ NoteStore = failingStore{}
var _ NoteStore = (*halfStore)(nil)
var _ NoteStore = (*store.Store)(nil)

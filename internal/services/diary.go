// Package services holds the application logic on top of the note store:
// creating and unlocking a diary, and the note operations of an unlocked
// session.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/cryptox"
	"github.com/maitelab/maitenotas/internal/logging"
	"github.com/maitelab/maitenotas/internal/store"
	"github.com/maitelab/maitenotas/internal/tree"
)

// NoteStore is the subset of *store.Store used by the services.
type NoteStore interface {
	Exists() bool
	Initialize(ctx context.Context, key cryptox.Key, password string, opts ...store.InitOption) bool
	VerifyPassword(ctx context.Context, key cryptox.Key, password string) bool
	KeyParams(ctx context.Context) (cryptox.KeyParams, error)
	CreateBook(ctx context.Context, key cryptox.Key, name string) (int64, error)
	GetBookName(ctx context.Context, key cryptox.Key, bookID int64) (string, error)
	CreateNote(ctx context.Context, key cryptox.Key, bookID, parentID int64, name, text string) (int64, error)
	GetNoteText(ctx context.Context, key cryptox.Key, noteID int64) (string, error)
	UpdateNoteText(ctx context.Context, key cryptox.Key, noteID int64, text string) error
	UpdateNoteName(ctx context.Context, key cryptox.Key, noteID int64, name string) error
	DeleteNote(ctx context.Context, noteID int64) error
	ListNoteTree(ctx context.Context, key cryptox.Key, bookID int64) ([]tree.Row, error)
	Info(ctx context.Context) (store.Info, error)
}

// CreateOptions selects how a new store derives its key.
type CreateOptions struct {
	// Salted stores a random salt in the store metadata instead of using
	// the password as its own salt.
	Salted bool
	// KDF applies to salted stores only.
	KDF cryptox.KDF
}

// DiaryService defines the operations of the front-end.
//
//   - Create and Unlock open a Session.
//   - Every other call works inside a Session.
type DiaryService interface {
	Create(ctx context.Context, password, confirm, bookName string, opts CreateOptions) (*Session, error)
	Unlock(ctx context.Context, password string) (*Session, error)
	Tree(ctx context.Context, sess *Session) (*tree.Tree, error)
	Select(ctx context.Context, sess *Session, noteID int64, editorText string) (string, error)
	Read(ctx context.Context, sess *Session, noteID int64) (string, error)
	SaveSelected(ctx context.Context, sess *Session, text string) error
	AddLeaf(ctx context.Context, sess *Session, parentID int64) (int64, error)
	Rename(ctx context.Context, sess *Session, noteID int64, name string) error
	Remove(ctx context.Context, sess *Session, noteID int64) error
	Info(ctx context.Context) (store.Info, error)
}

type diaryService struct {
	store NoteStore
	log   logging.Logger
}

func NewDiaryService(st NoteStore, log logging.Logger) DiaryService {
	return &diaryService{store: st, log: log.With("component", "diary")}
}

// Create initializes a new store protected by password, creates its first
// book and seeds it with two sample notes.
func (d *diaryService) Create(ctx context.Context, password, confirm, bookName string, opts CreateOptions) (*Session, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if d.store.Exists() {
		return nil, ErrStoreExists
	}

	params := cryptox.LegacyKeyParams()
	if opts.Salted {
		kdf := opts.KDF
		if kdf == "" {
			kdf = cryptox.KDFPBKDF2
		}
		params = cryptox.NewKeyParams(kdf)
	}

	key := params.Derive(password)
	if !d.store.Initialize(ctx, key, password, store.WithKeyParams(params)) {
		key.Wipe()
		return nil, ErrStoreUnavailable
	}

	bookID, err := d.seed(ctx, key, bookName)
	if err != nil {
		key.Wipe()
		d.log.Error(ctx, "diary seeding failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreIncomplete, err)
	}

	d.log.Info(ctx, "diary created", "book_id", bookID, "salted", opts.Salted)
	return &Session{key: key, BookID: bookID}, nil
}

// seed creates the first book and its two sample notes.
func (d *diaryService) seed(ctx context.Context, key cryptox.Key, bookName string) (int64, error) {
	bookID, err := d.store.CreateBook(ctx, key, bookName)
	if err != nil {
		return 0, fmt.Errorf("create book: %w", err)
	}

	samples := []struct{ name, text string }{
		{leafOneOf + bookName, sampleText1 + bookName},
		{leafTwoOf + bookName, sampleText2 + bookName},
	}
	for _, s := range samples {
		if _, err := d.store.CreateNote(ctx, key, bookID, common.RootParentID, s.name, s.text); err != nil {
			return 0, fmt.Errorf("create sample note: %w", err)
		}
	}
	return bookID, nil
}

// Unlock derives the key for an existing store and checks it against the
// stored password-check value.
func (d *diaryService) Unlock(ctx context.Context, password string) (*Session, error) {
	if !d.store.Exists() {
		return nil, ErrStoreUnavailable
	}
	params, err := d.store.KeyParams(ctx)
	if err != nil {
		if errors.Is(err, common.ErrStorageUnavailable) {
			return nil, ErrStoreUnavailable
		}
		return nil, fmt.Errorf("read key params: %w", err)
	}

	key := params.Derive(password)
	if !d.store.VerifyPassword(ctx, key, password) {
		key.Wipe()
		d.log.Info(ctx, "unlock rejected")
		return nil, ErrInvalidPassword
	}
	return &Session{key: key, BookID: common.FirstDiaryID}, nil
}

// Tree assembles the note hierarchy of the session's book. Notes whose
// parent no longer exists are logged and kept in Tree.Orphans.
func (d *diaryService) Tree(ctx context.Context, sess *Session) (*tree.Tree, error) {
	if sess.Closed() {
		return nil, ErrSessionClosed
	}
	name, err := d.store.GetBookName(ctx, sess.key, sess.BookID)
	if err != nil {
		return nil, fmt.Errorf("book name: %w", err)
	}
	rows, err := d.store.ListNoteTree(ctx, sess.key, sess.BookID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	t := tree.Assemble(name, rows)
	for _, o := range t.Orphans() {
		d.log.Warn(ctx, "orphaned note", "note_id", o.ID, "parent_id", o.ParentID)
	}
	return t, nil
}

// Select saves editorText into the previously selected note, if any, then
// makes noteID the selection and returns its text.
func (d *diaryService) Select(ctx context.Context, sess *Session, noteID int64, editorText string) (string, error) {
	if sess.Closed() {
		return "", ErrSessionClosed
	}
	if sess.selected >= 1 {
		if err := d.store.UpdateNoteText(ctx, sess.key, sess.selected, editorText); err != nil {
			return "", fmt.Errorf("save note %d: %w", sess.selected, err)
		}
	}

	text, err := d.store.GetNoteText(ctx, sess.key, noteID)
	if err != nil {
		return "", fmt.Errorf("load note %d: %w", noteID, err)
	}
	sess.selected = noteID
	return text, nil
}

// Read returns the text of noteID without touching the selection.
func (d *diaryService) Read(ctx context.Context, sess *Session, noteID int64) (string, error) {
	if sess.Closed() {
		return "", ErrSessionClosed
	}
	text, err := d.store.GetNoteText(ctx, sess.key, noteID)
	if err != nil {
		return "", fmt.Errorf("load note %d: %w", noteID, err)
	}
	return text, nil
}

func (d *diaryService) SaveSelected(ctx context.Context, sess *Session, text string) error {
	if sess.Closed() {
		return ErrSessionClosed
	}
	if sess.selected < 1 {
		return ErrNothingSelected
	}
	if err := d.store.UpdateNoteText(ctx, sess.key, sess.selected, text); err != nil {
		return fmt.Errorf("save note %d: %w", sess.selected, err)
	}
	return nil
}

// AddLeaf creates an empty note named NewLeafName under parentID.
func (d *diaryService) AddLeaf(ctx context.Context, sess *Session, parentID int64) (int64, error) {
	if sess.Closed() {
		return 0, ErrSessionClosed
	}
	id, err := d.store.CreateNote(ctx, sess.key, sess.BookID, parentID, NewLeafName, "")
	if err != nil {
		return 0, fmt.Errorf("add note: %w", err)
	}
	return id, nil
}

func (d *diaryService) Rename(ctx context.Context, sess *Session, noteID int64, name string) error {
	if sess.Closed() {
		return ErrSessionClosed
	}
	if err := d.store.UpdateNoteName(ctx, sess.key, noteID, name); err != nil {
		return fmt.Errorf("rename note %d: %w", noteID, err)
	}
	return nil
}

// Remove deletes one note. Its children stay in the store as orphans.
func (d *diaryService) Remove(ctx context.Context, sess *Session, noteID int64) error {
	if sess.Closed() {
		return ErrSessionClosed
	}
	if err := d.store.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("remove note %d: %w", noteID, err)
	}
	if sess.selected == noteID {
		sess.selected = 0
	}
	return nil
}

func (d *diaryService) Info(ctx context.Context) (store.Info, error) {
	if !d.store.Exists() {
		return store.Info{}, ErrStoreUnavailable
	}
	return d.store.Info(ctx)
}

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/cryptox"
	"github.com/maitelab/maitenotas/internal/store/repositories/journals"
	"github.com/maitelab/maitenotas/internal/tree"
)

// CreateBook stores a new book named name and returns its id.
func (s *Store) CreateBook(ctx context.Context, key cryptox.Key, name string) (int64, error) {
	ct, err := cryptox.EncryptField(name, key)
	if err != nil {
		return 0, s.fail(ctx, "create book", err)
	}

	var id int64
	err = s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		if id, err = s.repos.Books(db).Insert(ctx, ct); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return 0, s.fail(ctx, "create book", err)
	}
	return id, nil
}

// GetBookName returns the decrypted name of a book, or DefaultBookName when
// no such book exists.
func (s *Store) GetBookName(ctx context.Context, key cryptox.Key, bookID int64) (string, error) {
	var ct []byte
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		ct, err = s.repos.Books(db).GetName(ctx, bookID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return storageErr(err)
		}
		return err
	})
	if errors.Is(err, common.ErrorNotFound) {
		return DefaultBookName, nil
	}
	if err != nil {
		return "", s.fail(ctx, "get book name", err, "book_id", bookID)
	}

	name, err := cryptox.DecryptField(ct, key)
	if err != nil {
		return "", s.fail(ctx, "get book name", err, "book_id", bookID)
	}
	return name, nil
}

// CreateNote adds a journal under parentID in bookID and returns its id.
// The parent is not checked; a dangling parent shows up as an orphan when
// the tree is assembled.
func (s *Store) CreateNote(ctx context.Context, key cryptox.Key, bookID, parentID int64, name, text string) (int64, error) {
	encName, err := cryptox.EncryptField(name, key)
	if err != nil {
		return 0, s.fail(ctx, "create note", err)
	}
	encText, err := cryptox.EncryptField(text, key)
	if err != nil {
		return 0, s.fail(ctx, "create note", err)
	}

	var id int64
	err = s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		id, err = s.repos.Journals(db).Insert(ctx, journals.Record{
			BookID:   bookID,
			ParentID: parentID,
			Name:     encName,
			Text:     encText,
		})
		if err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return 0, s.fail(ctx, "create note", err, "book_id", bookID, "parent_id", parentID)
	}
	s.log.Debug(ctx, "note created", "note_id", id, "book_id", bookID, "parent_id", parentID)
	return id, nil
}

// GetNoteText returns the decrypted body of a note, or "" when the note does
// not exist.
func (s *Store) GetNoteText(ctx context.Context, key cryptox.Key, noteID int64) (string, error) {
	var ct []byte
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		ct, err = s.repos.Journals(db).GetText(ctx, noteID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return storageErr(err)
		}
		return err
	})
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", s.fail(ctx, "get note text", err, "note_id", noteID)
	}

	text, err := cryptox.DecryptField(ct, key)
	if err != nil {
		return "", s.fail(ctx, "get note text", err, "note_id", noteID)
	}
	return text, nil
}

// UpdateNoteText replaces the body of a note. A missing note is not an error.
func (s *Store) UpdateNoteText(ctx context.Context, key cryptox.Key, noteID int64, text string) error {
	return s.updateNote(ctx, "update note text", key, noteID, text, journals.Repository.UpdateText)
}

// UpdateNoteName renames a note. A missing note is not an error.
func (s *Store) UpdateNoteName(ctx context.Context, key cryptox.Key, noteID int64, name string) error {
	return s.updateNote(ctx, "update note name", key, noteID, name, journals.Repository.UpdateName)
}

func (s *Store) updateNote(ctx context.Context, op string, key cryptox.Key, noteID int64, value string,
	update func(journals.Repository, context.Context, int64, []byte) error) error {
	ct, err := cryptox.EncryptField(value, key)
	if err != nil {
		return s.fail(ctx, op, err, "note_id", noteID)
	}

	err = s.withDB(ctx, false, func(db *sql.DB) error {
		if err := update(s.repos.Journals(db), ctx, noteID, ct); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, op, err, "note_id", noteID)
	}
	return nil
}

// DeleteNote removes a single note. Its children keep their parent id and
// become orphans. Deleting a missing note succeeds.
func (s *Store) DeleteNote(ctx context.Context, noteID int64) error {
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		if err := s.repos.Journals(db).Delete(ctx, noteID); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete note", err, "note_id", noteID)
	}
	return nil
}

// ListNoteTree returns the decrypted (parent, id, name) rows of a book
// ordered by parent id, then id. The order guarantees that a parent created
// before its child is listed before it.
func (s *Store) ListNoteTree(ctx context.Context, key cryptox.Key, bookID int64) ([]tree.Row, error) {
	var recs []journals.Record
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		if recs, err = s.repos.Journals(db).ListByBook(ctx, bookID); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "list note tree", err, "book_id", bookID)
	}

	rows := make([]tree.Row, 0, len(recs))
	for _, r := range recs {
		name, err := cryptox.DecryptField(r.Name, key)
		if err != nil {
			return nil, s.fail(ctx, "list note tree", err, "book_id", bookID, "note_id", r.ID)
		}
		rows = append(rows, tree.Row{ParentID: r.ParentID, ID: r.ID, Name: name})
	}
	return rows, nil
}

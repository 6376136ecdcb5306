// Package journals persists the journal table: encrypted note names and
// bodies arranged in a parent/child hierarchy under a book.
package journals

import "context"

// Record is a journal row as stored. Name and Text are ciphertext.
type Record struct {
	BookID   int64
	ParentID int64
	ID       int64
	Name     []byte
	Text     []byte
}

type Repository interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	// GetText returns common.ErrorNotFound when no row has id.
	GetText(ctx context.Context, id int64) ([]byte, error)
	// UpdateText and UpdateName affect zero rows for a missing id and
	// report no error in that case.
	UpdateText(ctx context.Context, id int64, text []byte) error
	UpdateName(ctx context.Context, id int64, name []byte) error
	Delete(ctx context.Context, id int64) error
	// ListByBook returns BookID, ParentID, ID and Name for every row of the
	// book ordered by (parent_id, id). Text is left nil.
	ListByBook(ctx context.Context, bookID int64) ([]Record, error)
	Count(ctx context.Context) (int64, error)
}

// Package books persists the book table: encrypted book names keyed by id.
// Row 1 is reserved for the password-check value.
package books

import "context"

type Repository interface {
	// InsertWithID writes a row with an explicit id. Used for the reserved
	// password-check row.
	InsertWithID(ctx context.Context, id int64, name []byte) error
	// Insert writes a row and returns the id assigned by the database.
	Insert(ctx context.Context, name []byte) (int64, error)
	// GetName returns common.ErrorNotFound when no row has id.
	GetName(ctx context.Context, id int64) ([]byte, error)
	// CountExcept counts rows whose id differs from id.
	CountExcept(ctx context.Context, id int64) (int64, error)
}

package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/dbx"
)

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) InsertWithID(ctx context.Context, id int64, name []byte) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO book (id, book_name) VALUES (?, ?)`, id, name)
	if err != nil {
		return fmt.Errorf("failed to insert book %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, name []byte) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO book (book_name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get book id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetName(ctx context.Context, id int64) ([]byte, error) {
	var name []byte
	err := r.db.QueryRowContext(ctx, `SELECT book_name FROM book WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return name, nil
}

func (r *SQLiteRepository) CountExcept(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM book WHERE id <> ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

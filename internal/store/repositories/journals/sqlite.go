package journals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/dbx"
)

const table = "journal"

// SQLiteRepository implements Repository with squirrel-built statements.
type SQLiteRepository struct {
	db      dbx.DBTX
	builder squirrel.StatementBuilderType
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (r *SQLiteRepository) exec(ctx context.Context, q squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec Record) (int64, error) {
	q := r.builder.Insert(table).
		Columns("book_id", "parent_id", "journal_name", "journal_text").
		Values(rec.BookID, rec.ParentID, rec.Name, rec.Text)

	res, err := r.exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get journal id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetText(ctx context.Context, id int64) ([]byte, error) {
	query, args, err := r.builder.Select("journal_text").
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var text []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal %d: %w", id, err)
	}
	return text, nil
}

func (r *SQLiteRepository) UpdateText(ctx context.Context, id int64, text []byte) error {
	return r.update(ctx, id, "journal_text", text)
}

func (r *SQLiteRepository) UpdateName(ctx context.Context, id int64, name []byte) error {
	return r.update(ctx, id, "journal_name", name)
}

func (r *SQLiteRepository) update(ctx context.Context, id int64, column string, value []byte) error {
	q := r.builder.Update(table).
		Set(column, value).
		Where(squirrel.Eq{"id": id})

	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("failed to update %s of journal %d: %w", column, id, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	q := r.builder.Delete(table).Where(squirrel.Eq{"id": id})

	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("failed to delete journal %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ListByBook(ctx context.Context, bookID int64) ([]Record, error) {
	query, args, err := r.builder.Select("book_id", "parent_id", "id", "journal_name").
		From(table).
		Where(squirrel.Eq{"book_id": bookID}).
		OrderBy("parent_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select journals: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.BookID, &rec.ParentID, &rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := r.builder.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journals: %w", err)
	}
	return n, nil
}

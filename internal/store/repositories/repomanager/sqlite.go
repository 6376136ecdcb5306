// Package repomanager vends the SQLite repositories of the note store bound
// to a connection or transaction, and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/maitelab/maitenotas/internal/dbx"
	"github.com/maitelab/maitenotas/internal/logging"
	"github.com/maitelab/maitenotas/internal/store/migrations"
	"github.com/maitelab/maitenotas/internal/store/repositories/books"
	"github.com/maitelab/maitenotas/internal/store/repositories/journals"
	"github.com/maitelab/maitenotas/internal/store/repositories/metadata"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct {
	log logging.Logger
}

func NewSQLiteRepositoryManager(log logging.Logger) *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{log: log}
}

func (m *SQLiteRepositoryManager) Books(db dbx.DBTX) books.Repository {
	return books.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Journals(db dbx.DBTX) journals.Repository {
	return journals.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// RunMigrations brings the schema up to date. Existing tables are left
// untouched, so it is safe on stores created before migrations existed.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(logging.GooseLogger{L: m.log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

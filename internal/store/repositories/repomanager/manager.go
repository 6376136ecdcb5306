package repomanager

import (
	"context"
	"database/sql"

	"github.com/maitelab/maitenotas/internal/dbx"
	"github.com/maitelab/maitenotas/internal/store/repositories/books"
	"github.com/maitelab/maitenotas/internal/store/repositories/journals"
	"github.com/maitelab/maitenotas/internal/store/repositories/metadata"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Books(db dbx.DBTX) books.Repository
	Journals(db dbx.DBTX) journals.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// Package store is the encrypted note store: a single SQLite file holding
// books and their journals, with every user-visible field sealed by cryptox
// under the session key.
//
// Every operation opens its own connection to the file, runs, and closes it
// again before returning, so no handle outlives a call.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/dbx"
	"github.com/maitelab/maitenotas/internal/filex"
	"github.com/maitelab/maitenotas/internal/logging"
	"github.com/maitelab/maitenotas/internal/store/repositories/repomanager"
)

// DefaultBookName is returned by GetBookName for an unknown book.
const DefaultBookName = "Book"

// DefaultBusyTimeout is how long SQLite waits on a locked file.
const DefaultBusyTimeout = 5 * time.Second

type Store struct {
	path        string
	busyTimeout time.Duration
	log         logging.Logger
	repos       repomanager.RepositoryManager
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) { s.busyTimeout = d }
}

// New returns a Store for the file at path. Nothing is opened until the
// first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		busyTimeout: DefaultBusyTimeout,
		log:         logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "store", "path", path)
	s.repos = repomanager.NewSQLiteRepositoryManager(s.log)
	return s
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the data file is present. A missing file means the
// application runs for the first time.
func (s *Store) Exists() bool {
	return filex.IsRegularFile(s.path)
}

// withDB opens the data file, runs fn and closes the file on every path.
// Only Initialize passes create; all other operations require the file.
func (s *Store) withDB(ctx context.Context, create bool, fn func(db *sql.DB) error) error {
	db, err := dbx.OpenSQLite(ctx, dbx.SQLiteDSN(s.path, create, s.busyTimeout))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			s.log.Warn(ctx, "close failed", "error", cerr)
		}
	}()
	return fn(db)
}

// storageErr marks err as a failed statement on an open store.
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", common.ErrStorage, err)
}

// fail logs err for op and returns it unchanged.
func (s *Store) fail(ctx context.Context, op string, err error, args ...any) error {
	s.log.Error(ctx, op+" failed", append(args, "error", err)...)
	return err
}

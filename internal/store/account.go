package store

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maitelab/maitenotas/internal/common"
	"github.com/maitelab/maitenotas/internal/cryptox"
	"github.com/maitelab/maitenotas/internal/dbx"
	"github.com/maitelab/maitenotas/internal/filex"
	"github.com/maitelab/maitenotas/internal/store/repositories/metadata"
)

type initConfig struct {
	params cryptox.KeyParams
}

// InitOption customizes Initialize.
type InitOption func(*initConfig)

// WithKeyParams records p as the store's key derivation parameters. Legacy
// parameters leave no KDF metadata behind.
func WithKeyParams(p cryptox.KeyParams) InitOption {
	return func(c *initConfig) { c.params = p }
}

// Initialize creates the schema when absent and writes the password-check
// row, encrypted under key, as book 1. It returns false when the file cannot
// be created or written, or when the store was already initialized.
func (s *Store) Initialize(ctx context.Context, key cryptox.Key, password string, opts ...InitOption) bool {
	cfg := initConfig{params: cryptox.LegacyKeyParams()}
	for _, o := range opts {
		o(&cfg)
	}

	if err := filex.EnsureParentDir(s.path); err != nil {
		_ = s.fail(ctx, "initialize", fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err))
		return false
	}

	check, err := cryptox.EncryptField(password, key)
	if err != nil {
		_ = s.fail(ctx, "initialize", err)
		return false
	}

	err = s.withDB(ctx, true, func(db *sql.DB) error {
		if err := s.repos.RunMigrations(ctx, db); err != nil {
			return storageErr(err)
		}
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if err := s.repos.Books(tx).InsertWithID(ctx, common.PasswordBookID, check); err != nil {
				return storageErr(err)
			}
			return storageErrOrNil(writeMetadata(ctx, s.repos.Metadata(tx), cfg.params))
		})
	})
	if err != nil {
		_ = s.fail(ctx, "initialize", err)
		return false
	}

	s.log.Info(ctx, "store initialized", "kdf", cfg.params.KDF, "salted", !cfg.params.Legacy())
	return true
}

func writeMetadata(ctx context.Context, md metadata.Repository, p cryptox.KeyParams) error {
	if err := md.Set(ctx, metadata.KeyStoreID, []byte(uuid.NewString())); err != nil {
		return err
	}
	if err := md.Set(ctx, metadata.KeyCreatedAt, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
		return err
	}
	if p.Legacy() {
		return nil
	}
	if err := md.Set(ctx, metadata.KeyKDF, []byte(p.KDF)); err != nil {
		return err
	}
	return md.Set(ctx, metadata.KeyKDFSalt, p.Salt)
}

func storageErrOrNil(err error) error {
	if err == nil {
		return nil
	}
	return storageErr(err)
}

// VerifyPassword reports whether password matches the value sealed in the
// password-check row under key. Any failure reads as a mismatch; the cause
// is logged.
func (s *Store) VerifyPassword(ctx context.Context, key cryptox.Key, password string) bool {
	var stored []byte
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		stored, err = s.repos.Books(db).GetName(ctx, common.PasswordBookID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return storageErr(err)
		}
		return err
	})
	if err != nil {
		_ = s.fail(ctx, "verify password", err)
		return false
	}

	plain, err := cryptox.DecryptField(stored, key)
	if err != nil {
		s.log.Info(ctx, "password rejected", "reason", err)
		return false
	}
	if subtle.ConstantTimeCompare([]byte(plain), []byte(password)) != 1 {
		s.log.Info(ctx, "password rejected", "reason", "mismatch")
		return false
	}
	return true
}

// KeyParams returns the key derivation parameters recorded at creation.
// Stores without KDF metadata use the legacy self-salted derivation.
func (s *Store) KeyParams(ctx context.Context) (cryptox.KeyParams, error) {
	var p cryptox.KeyParams
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		var err error
		p, err = readKeyParams(ctx, s.repos.Metadata(db))
		return err
	})
	if err != nil {
		return cryptox.KeyParams{}, s.fail(ctx, "read key params", err)
	}
	return p, nil
}

func readKeyParams(ctx context.Context, md metadata.Repository) (cryptox.KeyParams, error) {
	ok, err := md.Available(ctx)
	if err != nil {
		return cryptox.KeyParams{}, storageErr(err)
	}
	if !ok {
		return cryptox.LegacyKeyParams(), nil
	}

	name, err := md.Get(ctx, metadata.KeyKDF)
	if err != nil {
		return cryptox.KeyParams{}, storageErr(err)
	}
	if name == nil {
		return cryptox.LegacyKeyParams(), nil
	}
	kdf, err := cryptox.ParseKDF(string(name))
	if err != nil {
		return cryptox.KeyParams{}, storageErr(err)
	}

	salt, err := md.Get(ctx, metadata.KeyKDFSalt)
	if err != nil {
		return cryptox.KeyParams{}, storageErr(err)
	}
	if len(salt) == 0 {
		return cryptox.KeyParams{}, storageErr(fmt.Errorf("kdf %s recorded without salt", kdf))
	}
	return cryptox.KeyParams{KDF: kdf, Salt: salt}, nil
}

// Info summarizes a store without needing the key.
type Info struct {
	Path      string
	StoreID   string
	KDF       cryptox.KDF
	Salted    bool
	CreatedAt time.Time
	Books     int64
	Journals  int64
}

// Info reads the store metadata and row counts. StoreID and CreatedAt are
// empty for stores created without metadata.
func (s *Store) Info(ctx context.Context) (Info, error) {
	info := Info{Path: s.path}
	err := s.withDB(ctx, false, func(db *sql.DB) error {
		md := s.repos.Metadata(db)
		p, err := readKeyParams(ctx, md)
		if err != nil {
			return err
		}
		info.KDF = p.KDF
		info.Salted = !p.Legacy()

		if ok, err := md.Available(ctx); err != nil {
			return storageErr(err)
		} else if ok {
			all, err := md.List(ctx)
			if err != nil {
				return storageErr(err)
			}
			info.StoreID = string(all[metadata.KeyStoreID])
			if ts, ok := all[metadata.KeyCreatedAt]; ok {
				if t, err := time.Parse(time.RFC3339, string(ts)); err == nil {
					info.CreatedAt = t
				}
			}
		}

		if info.Books, err = s.repos.Books(db).CountExcept(ctx, common.PasswordBookID); err != nil {
			return storageErr(err)
		}
		if info.Journals, err = s.repos.Journals(db).Count(ctx); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return Info{}, s.fail(ctx, "info", err)
	}
	return info, nil
}

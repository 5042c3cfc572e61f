package kv

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/usermgr/internal/dbx"
)

// Store is the session backend over a SQLite database. Single-key calls go
// straight to the table; SetMany and DeleteMany run in one transaction so the
// token and the user email never diverge on disk.
type Store struct {
	db *sql.DB
	*SQLiteRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, SQLiteRepository: NewSQLiteRepository(db)}
}

func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for k, v := range values {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteMany(ctx context.Context, keys ...string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, k := range keys {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

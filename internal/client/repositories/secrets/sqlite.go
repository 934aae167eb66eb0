package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/client/migrations"
	"github.com/dmitrijs2005/authflow/internal/dbx"
)

// SQLiteStore keeps secrets in the "secrets" table of a local SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLiteStore opens the database at dsn and migrates it.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := dbx.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, key Key, value string) error {
	return save(ctx, s.db, key, value)
}

func (s *SQLiteStore) Load(ctx context.Context, key Key) (string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE key = ?`, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get secret[%s]: %w", key, err)
	}
	return string(value), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key Key) error {
	return remove(ctx, s.db, key)
}

func (s *SQLiteStore) Apply(ctx context.Context, muts ...Mutation) error {
	if len(muts) == 0 {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, m := range muts {
			var err error
			if m.Delete {
				err = remove(ctx, tx, m.Key)
			} else {
				err = save(ctx, tx, m.Key, m.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func save(ctx context.Context, db dbx.DBTX, key Key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO secrets (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, string(key), []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set secret[%s]: %w", key, err)
	}
	return nil
}

func remove(ctx context.Context, db dbx.DBTX, key Key) error {
	_, err := db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, string(key))
	if err != nil {
		return fmt.Errorf("failed to delete secret[%s]: %w", key, err)
	}
	return nil
}

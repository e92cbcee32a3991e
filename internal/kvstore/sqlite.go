package kvstore

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS assets (
	key       TEXT PRIMARY KEY,
	mime_type TEXT NOT NULL,
	data      BLOB NOT NULL
);`

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database file at path. Use
// ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite database %s", path)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating kv schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading record %s", key)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, func(tx Tx) error { return tx.Set(key, value) })
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.Update(ctx, func(tx Tx) error { return tx.Delete(key) })
}

func (s *SQLiteStore) GetAsset(ctx context.Context, key string) (*Blob, bool, error) {
	var blob Blob
	err := s.db.QueryRowContext(ctx, `SELECT mime_type, data FROM assets WHERE key = ?`, key).
		Scan(&blob.MimeType, &blob.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading asset %s", key)
	}
	return &blob, true, nil
}

func (s *SQLiteStore) SetAsset(ctx context.Context, key string, blob *Blob) error {
	return s.Update(ctx, func(tx Tx) error { return tx.SetAsset(key, blob) })
}

func (s *SQLiteStore) DeleteAsset(ctx context.Context, key string) error {
	return s.Update(ctx, func(tx Tx) error { return tx.DeleteAsset(key) })
}

func (s *SQLiteStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(&sqliteTx{ctx: ctx, tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *sqliteTx) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRowContext(t.ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading record %s", key)
	}
	return value, true, nil
}

func (t *sqliteTx) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrapf(err, "writing record %s", key)
}

func (t *sqliteTx) Delete(key string) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM records WHERE key = ?`, key)
	return errors.Wrapf(err, "deleting record %s", key)
}

func (t *sqliteTx) SetAsset(key string, blob *Blob) error {
	if blob == nil {
		return errors.Errorf("nil asset for %s", key)
	}
	data := blob.Data
	if data == nil {
		data = []byte{}
	}
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO assets (key, mime_type, data) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET mime_type = excluded.mime_type, data = excluded.data`,
		key, blob.MimeType, data)
	return errors.Wrapf(err, "writing asset %s", key)
}

func (t *sqliteTx) DeleteAsset(key string) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM assets WHERE key = ?`, key)
	return errors.Wrapf(err, "deleting asset %s", key)
}

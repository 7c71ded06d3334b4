package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/model"
	_ "modernc.org/sqlite"
)

// sqliteSchema creates the key-value table on SQLite. The MySQL schema lives in
// scripts/database.sql and is applied by the migration command.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS kv_store (
		item_key   TEXT PRIMARY KEY,
		item_value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`

// upsertMySQL and upsertSQLite insert a value or replace the existing one.
const (
	upsertMySQL = `
		INSERT INTO kv_store (item_key, item_value, updated_at)
		VALUES (:item_key, :item_value, :updated_at)
		ON DUPLICATE KEY UPDATE item_value = VALUES(item_value), updated_at = VALUES(updated_at)`
	upsertSQLite = `
		INSERT INTO kv_store (item_key, item_value, updated_at)
		VALUES (:item_key, :item_value, :updated_at)
		ON CONFLICT(item_key) DO UPDATE SET item_value = excluded.item_value, updated_at = excluded.updated_at`
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQL implements [Store] on a relational database through prepared statements.
type SQL struct {
	db *sqlx.DB

	// upsert is a prepared statement for storing a value.
	upsert *sqlx.NamedStmt

	// selectWhereKey is a prepared statement for reading the value of a key.
	selectWhereKey *sqlx.Stmt

	// deleteWhereKey is a prepared statement for deleting a key.
	deleteWhereKey *sqlx.Stmt
}

var _ Store = (*SQL)(nil)

// OpenMySQL connects to a MySQL database. The kv_store table must already exist.
func OpenMySQL(dsn string) (*SQL, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	s, err := NewSQL(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLite opens (or creates) a SQLite database and its kv_store table.
// Use ":memory:" for an in-memory database.
func OpenSQLite(path string) (*SQL, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// An in-memory database exists once per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s, err := NewSQL(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL prepares all statements on db. The database can be a real database for production use
// or a mock database within unit tests.
func NewSQL(db *sqlx.DB) (*SQL, error) {
	var err error
	s := &SQL{db: db}

	upsert := upsertMySQL
	if db.DriverName() == "sqlite" {
		upsert = upsertSQLite
	}
	s.upsert, err = db.PrepareNamed(upsert)
	if err != nil {
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	s.selectWhereKey, err = db.Preparex(`
		SELECT item_value FROM kv_store WHERE item_key = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	s.deleteWhereKey, err = db.Preparex(`
		DELETE FROM kv_store WHERE item_key = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete: %w", err)
	}
	return s, nil
}

// Get reads the value stored under key.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.selectWhereKey.GetContext(ctx, &value, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key (upsert).
func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := model.Entry{Key: key, Value: value, UpdatedAt: time.Now().UnixMilli()}
	if _, err := s.upsert.ExecContext(ctx, entry); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *SQL) Remove(ctx context.Context, key string) error {
	if _, err := s.deleteWhereKey.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Ping verifies that the database is reachable.
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the prepared statements and the database.
func (s *SQL) Close() error {
	s.upsert.Close()
	s.selectWhereKey.Close()
	s.deleteWhereKey.Close()
	return s.db.Close()
}

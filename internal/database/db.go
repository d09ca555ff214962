package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"linkedin-leads/internal/models"
)

// DriverName is the sqlite3 driver with the leads SQL functions registered
const DriverName = "sqlite3_leads"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", Casefold, true)
		},
	})
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Casefold lowercases s using Unicode rules. It backs the casefold() SQL
// function so search matches "bangalore" against "Bangalore, India" and
// non-ASCII names alike.
func Casefold(s string) string {
	return strings.ToLower(s)
}

// DB represents the database connection
type DB struct {
	conn *sqlx.DB
}

// New opens the profile database and makes sure the schema exists
func New(cfg models.DatabaseConfig) (*DB, error) {
	conn, err := sqlx.Open(DriverName, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	if !isMemory(cfg.Path) {
		conn.SetConnMaxLifetime(time.Hour)
	}

	db := &DB{conn: conn}
	if err := db.InitSchema(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// FromConn wraps an already opened connection without touching the schema
func FromConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

func dsn(cfg models.DatabaseConfig) string {
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=%d",
		cfg.Path, sep, cfg.BusyTimeout.Milliseconds())
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// InitSchema creates the profiles table. Existing rows are kept.
func (db *DB) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL CHECK (full_name <> ''),
			headline TEXT NOT NULL DEFAULT '',
			job_title TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			profile_url TEXT NOT NULL UNIQUE CHECK (profile_url <> ''),
			about TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_updated_at ON profiles(updated_at)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetConn returns the underlying connection (for repositories)
func (db *DB) GetConn() *sqlx.DB {
	return db.conn
}

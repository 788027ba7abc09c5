package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"karaoke/internal/config"
)

// Dialect identifies the SQL flavour behind a DB.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps the shared connection pool used by the queue and catalog stores.
type DB struct {
	*sqlx.DB
	dialect Dialect
	path    string
}

// Open connects to the database selected by cfg.Storage and applies pending
// migrations.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("storage: config is nil")
	}
	ctx = ensureContext(ctx)

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(ctx, cfg.Storage.SQLitePath, cfg.Storage.BusyTimeoutMs)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN(), cfg.Storage.MaxOpenConns, cfg.Storage.MaxIdleConns)
	default:
		return nil, fmt.Errorf("storage: driver %q has no SQL backend", cfg.Storage.Driver)
	}
}

// OpenSQLite opens (creating if needed) a SQLite database file. Every pooled
// connection gets WAL mode, foreign keys and the busy timeout, and write
// transactions start with BEGIN IMMEDIATE so concurrent writers serialize.
func OpenSQLite(ctx context.Context, path string, busyTimeoutMs int) (*DB, error) {
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = 5000
	}
	query := url.Values{}
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs))
	query.Set("_txlock", "immediate")
	dsn := "file:" + path + "?" + query.Encode()

	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db := &DB{DB: conn, dialect: SQLite, path: path}
	if err := db.init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// OpenPostgres connects to PostgreSQL using a lib/pq connection string.
func OpenPostgres(ctx context.Context, dsn string, maxOpen, maxIdle int) (*DB, error) {
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if maxOpen > 0 {
		conn.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		conn.SetMaxIdleConns(maxIdle)
	}
	conn.SetConnMaxIdleTime(5 * time.Minute)

	db := &DB{DB: conn, dialect: Postgres}
	if err := db.init(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) init(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping %s: %w", db.dialect, err)
	}
	return db.applyMigrations(ctx)
}

// Dialect reports which SQL flavour the connection speaks.
func (db *DB) Dialect() Dialect {
	if db == nil {
		return ""
	}
	return db.dialect
}

// Path returns the database file for SQLite connections and "" otherwise.
func (db *DB) Path() string {
	if db == nil {
		return ""
	}
	return db.path
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

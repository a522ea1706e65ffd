package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the default embedded driver.
	DriverSQLite = "sqlite3"
	// DriverPostgres selects PostgreSQL through lib/pq.
	DriverPostgres = "postgres"
)

// DB is a database handle that knows its SQL dialect.
type DB struct {
	*sql.DB
	driver string
}

// New opens a SQLite database at the given path.
// It enables foreign keys and a busy timeout on every connection.
func New(path string) (*DB, error) {
	return Open(DriverSQLite, path)
}

// Open opens a database for the given driver. For SQLite dsn is a file path;
// for PostgreSQL it is a connection URL.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		dsn += "?_foreign_keys=1&_busy_timeout=5000"
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DB{DB: sqlDB, driver: driver}, nil
}

// Driver returns the driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Rebind rewrites ? placeholders into the driver's bind syntax.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the chat tables. It is idempotent.
func Migrate(ctx context.Context, db *DB) error {
	ts := "TIMESTAMP"
	if db.driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			website TEXT NOT NULL,
			user_id TEXT,
			started_at ` + ts + ` NOT NULL,
			ended_at ` + ts + `,
			total_messages INTEGER NOT NULL DEFAULT 0,
			geo_city TEXT,
			email_submitted BOOLEAN NOT NULL DEFAULT FALSE,
			had_product_recommendation BOOLEAN NOT NULL DEFAULT FALSE,
			had_product_click BOOLEAN NOT NULL DEFAULT FALSE,
			duration_seconds INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
			message_index INTEGER NOT NULL,
			user_message TEXT NOT NULL DEFAULT '',
			bot_response TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id)`,
		`CREATE TABLE IF NOT EXISTS chat_product_recommendations (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			chat_log_id TEXT,
			website TEXT,
			query_text TEXT,
			category TEXT,
			user_id TEXT,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_recommended_products (
			id TEXT PRIMARY KEY,
			recommendation_id TEXT NOT NULL REFERENCES chat_product_recommendations(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			product_name TEXT,
			product_url TEXT,
			position INTEGER NOT NULL,
			price DOUBLE PRECISION,
			was_clicked BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_recommended_products_rec ON chat_recommended_products (recommendation_id)`,
		`CREATE TABLE IF NOT EXISTS chat_product_clicks (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			position INTEGER,
			website TEXT,
			user_id TEXT,
			clicked_at ` + ts + ` NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return nil
}

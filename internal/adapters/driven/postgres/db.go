package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

//go:embed schema.sql
var schema string

// DefaultApplicationName tags token store sessions in pg_stat_activity
const DefaultApplicationName = "sercha-basicauth"

// DB is the connection pool behind TokenStore
type DB struct {
	*sql.DB
}

// Config holds token store connection settings.
// A client keeps one row per profile, so the pool stays small.
type Config struct {
	// URL is a postgres:// URL or a lib/pq key=value connection string
	URL string

	// ApplicationName is reported to the server for every session
	ApplicationName string

	// ConnectTimeout bounds each dial; rounded up to whole seconds
	ConnectTimeout time.Duration

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// ConnMaxIdleTime closes connections left idle between flows
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns settings for a single CLI or BFF process
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		ApplicationName: DefaultApplicationName,
		ConnectTimeout:  5 * time.Second,
		MaxOpenConns:    2,
		ConnMaxIdleTime: time.Minute,
	}
}

// dsn renders cfg as a lib/pq key=value string. Settings from cfg are
// appended last and take precedence over the same keys in URL.
func (cfg Config) dsn() (string, error) {
	dsn := strings.TrimSpace(cfg.URL)
	if dsn == "" {
		return "", fmt.Errorf("%w: database url is empty", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := pq.ParseURL(dsn)
		if err != nil {
			return "", fmt.Errorf("%w: database url: %v", domain.ErrInvalidInput, err)
		}
		dsn = parsed
	}

	parts := []string{dsn}
	if cfg.ApplicationName != "" {
		parts = append(parts, "application_name="+quoteValue(cfg.ApplicationName))
	}
	if cfg.ConnectTimeout > 0 {
		seconds := int((cfg.ConnectTimeout + time.Second - 1) / time.Second)
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", seconds))
	}
	return strings.Join(parts, " "), nil
}

// quoteValue quotes a key=value connection string value
func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Connect opens the pool, verifies it and ensures the session_tokens table exists
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping token database: %w", err)
	}

	store := &DB{DB: db}
	if err := store.ensureTokenTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// ensureTokenTable is idempotent
func (db *DB) ensureTokenTable(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create session_tokens table: %w", err)
	}
	return nil
}

// Ping backs the readiness probe
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

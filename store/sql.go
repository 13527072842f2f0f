package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver

	pberrors "github.com/kbukum/gopocket/errors"
)

// DefaultTable is the table SQL uses when none is configured.
const DefaultTable = "pb_auth_state"

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLConfig configures a SQL store. Drivers other than postgres must be
// registered by the application.
type SQLConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	Table  string `yaml:"table" mapstructure:"table"`
}

// SQL stores entries in a two-column table (name, value). Statements are
// rebound to the driver's placeholder style. Set relies on
// INSERT ... ON CONFLICT, which postgres and sqlite support.
type SQL struct {
	db    *sqlx.DB
	table string

	getQuery    string
	upsertQuery string
	deleteQuery string
}

// OpenSQL connects with cfg and creates the table if needed.
func OpenSQL(ctx context.Context, cfg SQLConfig) (*SQL, error) {
	if cfg.Driver == "" || cfg.DSN == "" {
		return nil, pberrors.StorageAccess("store.sql.open", errors.New("driver and dsn are required"))
	}
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, pberrors.StorageAccess("store.sql.open", err)
	}
	s, err := NewSQL(db, cfg.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.EnsureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open database. The table must be a plain identifier.
func NewSQL(db *sqlx.DB, table string) (*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifierRE.MatchString(table) {
		return nil, pberrors.StorageAccess("store.sql.open", fmt.Errorf("invalid table name %q", table))
	}
	return &SQL{
		db:          db,
		table:       table,
		getQuery:    db.Rebind(fmt.Sprintf("SELECT value FROM %s WHERE name = ?", table)),
		upsertQuery: db.Rebind(fmt.Sprintf(
			"INSERT INTO %s (name, value) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value", table)),
		deleteQuery: db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE name = ?", table)),
	}, nil
}

// EnsureTable creates the backing table if it does not exist.
func (s *SQL) EnsureTable(ctx context.Context) error {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (name VARCHAR(255) PRIMARY KEY, value TEXT NOT NULL)", s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return pberrors.StorageAccess("store.sql.migrate", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.getQuery, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pberrors.StorageAccess("store.sql.get", err)
	}
	return value, true, nil
}

// Set stores value under key in a single statement, so concurrent writers
// of a missing key cannot both insert it.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, key, value); err != nil {
		return pberrors.StorageAccess("store.sql.set", err)
	}
	return nil
}

// Delete removes key.
func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQuery, key); err != nil {
		return pberrors.StorageAccess("store.sql.delete", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *SQL) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return pberrors.StorageAccess("store.sql.ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQL) Close() error { return s.db.Close() }

var (
	_ Storage = (*SQL)(nil)
	_ Pinger  = (*SQL)(nil)
)

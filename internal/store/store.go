package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Store represents the catalog's persistent state
type Store struct {
	db *sql.DB
}

// OpenOptions holds options for opening a database
type OpenOptions struct {
	NetworkOptimized bool // Apply network-optimized pragmas (catalog on a NAS share)
}

// Open opens or creates a SQLite database at the given path with default options
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions opens or creates a SQLite database with custom options
func OpenWithOptions(path string, opts *OpenOptions) (*Store, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}

	dsn := fmt.Sprintf("file:%s?%s", path, dsnParams)
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The catalog is driven from a single control thread; one connection
	// keeps every statement on the same SQLite handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}

	if opts.NetworkOptimized {
		if err := store.applyNetworkPragmas(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply network pragmas: %w", err)
		}
	}

	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// applyNetworkPragmas applies SQLite optimizations for network filesystems
func (s *Store) applyNetworkPragmas() error {
	pragmas := []string{
		// NORMAL is safe with WAL mode, fsync only at checkpoints
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		// Negative value = KB
		"PRAGMA cache_size = -16000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// SQLiteVersion returns the SQLite version string
func SQLiteVersion() string {
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check on the database
func (s *Store) CheckIntegrity(ctx context.Context) error {
	var result string
	err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// Both drivers surface the SQLite message text unchanged.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

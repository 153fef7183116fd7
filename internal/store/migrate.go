package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const ledgerDDL = `CREATE TABLE IF NOT EXISTS _migrations (
  version VARCHAR(50) NOT NULL,
  run_on TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
)`

// Migration is one embedded up script
type Migration struct {
	Version    uint
	Identifier string
	Up         string
}

// Migrations returns the embedded migrations in ascending version order
func Migrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	defer src.Close()

	var migrations []Migration

	version, err := src.First()
	for err == nil {
		m, readErr := readUp(src, version)
		if readErr != nil {
			return nil, readErr
		}
		migrations = append(migrations, m)
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to enumerate migrations: %w", err)
	}

	return migrations, nil
}

func readUp(src source.Driver, version uint) (Migration, error) {
	r, identifier, err := src.ReadUp(version)
	if err != nil {
		return Migration{}, fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return Migration{}, fmt.Errorf("failed to read migration %d: %w", version, err)
	}

	return Migration{Version: version, Identifier: identifier, Up: string(body)}, nil
}

// migrate applies every embedded migration newer than the ledger's last entry.
// Each migration commits together with its ledger row.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("failed to create migration ledger: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := Migrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		current = m.Version
	}

	return nil
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Identifier, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO _migrations (version) VALUES (?)",
			strconv.FormatUint(uint64(m.Version), 10)); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		return nil
	})
}

// schemaVersion returns the highest recorded migration version, 0 if none
func (s *Store) schemaVersion(ctx context.Context) (uint, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(CAST(version AS INTEGER)) FROM _migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return uint(version.Int64), nil
}

// SchemaVersion returns the current schema version recorded in the ledger
func (s *Store) SchemaVersion(ctx context.Context) (uint, error) {
	return s.schemaVersion(ctx)
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdulachik/cadavre/internal/db/migrations"
	_ "modernc.org/sqlite"
)

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Store wraps the database connection and provides access to queries.
type Store struct {
	*sql.DB
	*Queries
}

// NewStore opens the harvest log at dbPath, creating its directory.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", strings.ToLower(pragma), err)
		}
	}

	return &Store{
		DB:      sqlDB,
		Queries: New(sqlDB),
	}, nil
}

// Migration is one embedded schema file.
type Migration struct {
	Version string
	Applied bool
}

// Migrations lists every embedded migration and whether it was applied.
func (s *Store) Migrations(ctx context.Context) ([]Migration, error) {
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	files, err := migrationFiles()
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(files))
	for _, f := range files {
		out = append(out, Migration{Version: f, Applied: applied[f]})
	}
	return out, nil
}

// Migrate runs all pending database migrations.
func (s *Store) Migrate(ctx context.Context) error {
	slog.Debug("running database migrations")

	list, err := s.Migrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range list {
		if m.Applied {
			slog.Debug("migration already applied", "file", m.Version)
			continue
		}

		content, err := readMigration(m.Version)
		if err != nil {
			return err
		}

		err = s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, extractUpMigration(content)); err != nil {
				return fmt.Errorf("execute migration %s: %w", m.Version, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("record migration %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("migration applied", "file", m.Version)
	}

	return nil
}

// Rollback reverts the most recently applied migration. It returns the
// reverted version, or "" when nothing was applied.
func (s *Store) Rollback(ctx context.Context) (string, error) {
	list, err := s.Migrations(ctx)
	if err != nil {
		return "", err
	}

	var last string
	for _, m := range list {
		if m.Applied {
			last = m.Version
		}
	}
	if last == "" {
		return "", nil
	}

	content, err := readMigration(last)
	if err != nil {
		return "", err
	}

	down := extractDownMigration(content)
	if down == "" {
		return "", fmt.Errorf("migration %s has no down section", last)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, down); err != nil {
			return fmt.Errorf("revert migration %s: %w", last, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", last); err != nil {
			return fmt.Errorf("unrecord migration %s: %w", last, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("migration reverted", "file", last)
	return last, nil
}

func (s *Store) ensureMigrationsTable(ctx context.Context) error {
	_, err := s.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := s.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}
	return applied, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func readMigration(file string) (string, error) {
	content, err := fs.ReadFile(migrations.FS, file)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", file, err)
	}
	return string(content), nil
}

// extractUpMigration returns the part of a migration before the down marker.
func extractUpMigration(content string) string {
	up, _, _ := strings.Cut(content, downMarker)
	up = strings.TrimSpace(up)
	up = strings.TrimPrefix(up, upMarker)
	return strings.TrimSpace(up)
}

// extractDownMigration returns the part after the down marker, if any.
func extractDownMigration(content string) string {
	_, down, found := strings.Cut(content, downMarker)
	if !found {
		return ""
	}
	return strings.TrimSpace(down)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

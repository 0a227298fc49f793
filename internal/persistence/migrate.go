package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"aigency/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one numbered schema change
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// Migrator applies the embedded schema migrations
type Migrator struct {
	db  *PostgresDB
	log *slog.Logger
}

// NewMigrator creates a migrator for db
func NewMigrator(db *PostgresDB) *Migrator {
	return &Migrator{db: db, log: logger.With("component", "migrate")}
}

// Migrate applies every pending migration, each in its own transaction
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}
	available, err := loadMigrations(migrationFiles)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i, migration := range available {
		if status[i].Applied {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return applied, fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		applied++
	}

	if applied == 0 {
		m.log.Info("No pending migrations")
	} else {
		m.log.Info("Migrations applied", "count", applied)
	}
	return applied, nil
}

// Status lists every embedded migration with its applied state
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	_, err := m.db.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := m.db.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	available, err := loadMigrations(migrationFiles)
	if err != nil {
		return nil, err
	}
	status := make([]MigrationStatus, len(available))
	for i, migration := range available {
		status[i] = MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     applied[migration.Version],
		}
	}
	return status, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	m.log.Info("Applying migration", "version", migration.Version, "description", migration.Description)

	tx, err := m.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING`,
		migration.Version, migration.Description)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// loadMigrations reads migrations/NNN_description.sql files sorted by version.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, description, ok := parseMigrationName(entry.Name())
		if !ok {
			logger.Warn("Skipping migration file with invalid name", "file", entry.Name())
			continue
		}
		content, err := fs.ReadFile(fsys, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Description: description, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// parseMigrationName splits "001_initial_schema.sql" into 1 and "initial schema".
func parseMigrationName(name string) (int, string, bool) {
	prefix, rest, found := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
	if !found {
		return 0, "", false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", false
	}
	return version, strings.ReplaceAll(rest, "_", " "), true
}

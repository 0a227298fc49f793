package handlers

import (
	"context"
	"fmt"

	"aigency/internal/logger"
	"aigency/internal/persistence"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage the PostgreSQL schema for saved articles.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status

Applied migrations are tracked in the schema_migrations table.

Examples:
  aigency migrate up
  aigency migrate status`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateStatusCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Long: `Apply all pending database migrations in order. Each migration runs in its own
transaction and is recorded in schema_migrations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd.Context())
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context())
		},
	}
}

func runMigrateUp(ctx context.Context) error {
	log := logger.Get()
	log.Info("Starting database migration")

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := persistence.NewMigrator(db).Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if applied == 0 {
		fmt.Println("✅ Database is up to date")
		return nil
	}
	fmt.Printf("✅ Applied %d migration(s)\n", applied)
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := persistence.NewMigrator(db).Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(status) == 0 {
		fmt.Println("No migrations found")
		return nil
	}

	fmt.Println("📊 Migration Status")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-10s %-10s %s\n", "Version", "Status", "Description")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	pendingCount := 0
	for _, m := range status {
		statusStr, statusIcon := "applied", "✅"
		if !m.Applied {
			statusStr, statusIcon = "pending", "⏳"
			pendingCount++
		}
		fmt.Printf("%-10d %s %-8s %s\n", m.Version, statusIcon, statusStr, m.Description)
	}

	fmt.Println()
	fmt.Printf("Applied: %d | Pending: %d | Total: %d\n", len(status)-pendingCount, pendingCount, len(status))
	if pendingCount > 0 {
		fmt.Println("\nRun 'aigency migrate up' to apply pending migrations")
	}
	return nil
}

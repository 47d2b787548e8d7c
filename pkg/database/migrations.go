package database

import (
	"fmt"

	"go.uber.org/zap"
)

// Migration represents one schema change, applied at most once
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history of the bills store
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_bills",
		SQL: `
			CREATE TABLE IF NOT EXISTS bills (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL,
				type TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL DEFAULT 0,
				vat REAL NOT NULL DEFAULT 0,
				pct INTEGER NOT NULL DEFAULT 0,
				date TEXT NOT NULL DEFAULT '',
				commentary TEXT NOT NULL DEFAULT '',
				comment_admin TEXT NOT NULL DEFAULT '',
				file_url TEXT NOT NULL DEFAULT '',
				file_name TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "index_bills_email_status",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_bills_email ON bills(email);
			CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status);
		`,
	},
}

// Migrator applies pending schema migrations
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

func (m *Migrator) appliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
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
	return applied, rows.Err()
}

// RunMigrations applies every migration not yet recorded in schema_migrations
func (m *Migrator) RunMigrations() error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if _, err := m.db.Exec(migration.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := m.db.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RunMigrations creates the client-side tables if they do not exist
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	migrations := []string{
		createStorageEntriesTable,
		createSessionEventsTable(driver),
		createIndices,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const createStorageEntriesTable = `
CREATE TABLE IF NOT EXISTS storage_entries (
    name VARCHAR(100) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

func createSessionEventsTable(driver string) string {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	return `
CREATE TABLE IF NOT EXISTS session_events (
    ` + idColumn + `,
    event VARCHAR(40) NOT NULL,
    user_id VARCHAR(255),
    details TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
}

const createIndices = `
CREATE INDEX IF NOT EXISTS idx_session_events_created_at ON session_events(created_at);
`

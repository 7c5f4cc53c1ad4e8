package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/database"
)

// EntryRepository stores named values in storage_entries. It backs the
// durable token tier.
type EntryRepository struct {
	db     *sql.DB
	driver string
}

func NewEntryRepository(db *sql.DB, driver string) *EntryRepository {
	return &EntryRepository{db: db, driver: driver}
}

// Get returns the value stored under name
func (r *EntryRepository) Get(ctx context.Context, name string) (string, bool, error) {
	query := database.Rebind(r.driver, `SELECT value FROM storage_entries WHERE name = ?`)

	var value string
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

// Set inserts or replaces the value stored under name
func (r *EntryRepository) Set(ctx context.Context, name, value string) error {
	query := database.Rebind(r.driver, `
        INSERT INTO storage_entries (name, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
    `)
	_, err := r.db.ExecContext(ctx, query, name, value)
	return err
}

// Delete removes name; deleting a missing entry is not an error
func (r *EntryRepository) Delete(ctx context.Context, name string) error {
	query := database.Rebind(r.driver, `DELETE FROM storage_entries WHERE name = ?`)
	_, err := r.db.ExecContext(ctx, query, name)
	return err
}

// GetEntry returns the full entry, including when it was last written
func (r *EntryRepository) GetEntry(ctx context.Context, name string) (*database.StorageEntry, error) {
	query := database.Rebind(r.driver, `
        SELECT name, value, updated_at
        FROM storage_entries
        WHERE name = ?
    `)

	var entry database.StorageEntry
	err := r.db.QueryRowContext(ctx, query, name).Scan(&entry.Name, &entry.Value, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

package repositories

import (
	"context"
	"database/sql"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/database"
)

type SessionEventRepository struct {
	db     *sql.DB
	driver string
}

func NewSessionEventRepository(db *sql.DB, driver string) *SessionEventRepository {
	return &SessionEventRepository{db: db, driver: driver}
}

// InsertEvent appends a session event
func (r *SessionEventRepository) InsertEvent(ctx context.Context, event *database.SessionEvent) error {
	if r.driver == database.DriverPostgres {
		query := `
            INSERT INTO session_events (event, user_id, details)
            VALUES ($1, $2, $3)
            RETURNING id
        `
		return r.db.QueryRowContext(ctx, query, event.Event, event.UserID, event.Details).Scan(&event.ID)
	}

	query := `
        INSERT INTO session_events (event, user_id, details)
        VALUES (?, ?, ?)
    `
	result, err := r.db.ExecContext(ctx, query, event.Event, event.UserID, event.Details)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	event.ID = id
	return nil
}

// Record stores one session event
func (r *SessionEventRepository) Record(ctx context.Context, event, userID, details string) error {
	return r.InsertEvent(ctx, &database.SessionEvent{Event: event, UserID: userID, Details: details})
}

// ListEvents returns the newest events first, optionally filtered by event name
func (r *SessionEventRepository) ListEvents(ctx context.Context, event string, limit, offset int) ([]database.SessionEvent, error) {
	query := `
        SELECT id, event, user_id, details, created_at
        FROM session_events
        WHERE 1=1
    `
	args := []interface{}{}

	if event != "" {
		query += " AND event = ?"
		args = append(args, event)
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, database.Rebind(r.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []database.SessionEvent
	for rows.Next() {
		var e database.SessionEvent
		var userID, details sql.NullString
		if err := rows.Scan(&e.ID, &e.Event, &userID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UserID = userID.String
		e.Details = details.String
		events = append(events, e)
	}

	return events, rows.Err()
}

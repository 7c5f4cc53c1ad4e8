package database

import "time"

// StorageEntry is a named value in the durable token tier
type StorageEntry struct {
	Name      string    `db:"name" json:"name"`
	Value     string    `db:"value" json:"-"` // Never include in JSON
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionEvent records a session lifecycle transition on this client
type SessionEvent struct {
	ID        int64     `db:"id" json:"id"`
	Event     string    `db:"event" json:"event"`
	UserID    string    `db:"user_id" json:"user_id"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

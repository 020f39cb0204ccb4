// Package storage provides abstractions for session draft persistence.
package storage

import (
	"context"

	"github.com/hemanthk92/regdesk/internal/models"
)

// Store defines the interface for draft session persistence.
// This abstraction allows swapping backends (SQLite, PostgreSQL, etc.)
// without changing the session manager.
type Store interface {
	// SaveSession persists a session snapshot, replacing any previous
	// snapshot for the same session ID.
	SaveSession(ctx context.Context, snap *models.DraftSnapshot) error

	// GetSession retrieves the snapshot for a session ID.
	// Returns (nil, nil) when no snapshot exists.
	GetSession(ctx context.Context, sessionID string) (*models.DraftSnapshot, error)

	// DeleteSession removes a session snapshot. Deleting a missing
	// session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases any resources held by the store.
	Close() error
}

// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/hemanthk92/regdesk/internal/models"
	"github.com/hemanthk92/regdesk/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSession persists a session snapshot, replacing any previous one for
// the same session ID. Slots and members are rewritten wholesale; a draft
// snapshot is small (at most models.MaxSlots teams) so this is simpler and
// safer than diffing.
func (s *SQLiteStore) SaveSession(ctx context.Context, snap *models.DraftSnapshot) error {
	if snap.SessionID == "" {
		return fmt.Errorf("session id required")
	}
	updatedAt := snap.UpdatedAt
	if updatedAt == 0 {
		updatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, school_reg_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET school_reg_id = excluded.school_reg_id, updated_at = excluded.updated_at`,
		snap.SessionID, snap.SchoolRegID, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	// Drop and rewrite slot rows; member rows cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM draft_slots WHERE session_id = ?", snap.SessionID); err != nil {
		return fmt.Errorf("failed to clear draft slots: %w", err)
	}

	for slot, rec := range snap.Slots {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO draft_slots (session_id, slot_number, team_name, event, team_size) VALUES (?, ?, ?, ?, ?)",
			snap.SessionID, slot, rec.TeamName, rec.Event, rec.TeamSize,
		)
		if err != nil {
			return fmt.Errorf("failed to insert draft slot: %w", err)
		}

		for i, m := range rec.Members {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO draft_members (session_id, slot_number, position, name, class_grade, gender) VALUES (?, ?, ?, ?, ?, ?)",
				snap.SessionID, slot, i, m.Name, m.ClassGrade, m.Gender,
			)
			if err != nil {
				return fmt.Errorf("failed to insert draft member: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSession retrieves a session snapshot including all slots and members.
// Returns (nil, nil) when the session has never been saved.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.DraftSnapshot, error) {
	snap := &models.DraftSnapshot{SessionID: sessionID, Slots: make(map[int]models.TeamRecord)}
	err := s.db.QueryRowContext(ctx,
		"SELECT school_reg_id, updated_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&snap.SchoolRegID, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT slot_number, team_name, event, team_size FROM draft_slots WHERE session_id = ? ORDER BY slot_number",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot int
		var rec models.TeamRecord
		if err := rows.Scan(&slot, &rec.TeamName, &rec.Event, &rec.TeamSize); err != nil {
			return nil, fmt.Errorf("failed to scan draft slot: %w", err)
		}
		snap.Slots[slot] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draft slots: %w", err)
	}

	memberRows, err := s.db.QueryContext(ctx,
		"SELECT slot_number, name, class_grade, gender FROM draft_members WHERE session_id = ? ORDER BY slot_number, position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var slot int
		var m models.Member
		if err := memberRows.Scan(&slot, &m.Name, &m.ClassGrade, &m.Gender); err != nil {
			return nil, fmt.Errorf("failed to scan draft member: %w", err)
		}
		rec := snap.Slots[slot]
		rec.Members = append(rec.Members, m)
		snap.Slots[slot] = rec
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draft members: %w", err)
	}

	return snap, nil
}

// DeleteSession removes a session snapshot and its slots.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

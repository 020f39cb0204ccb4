package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hemanthk92/regdesk/internal/models"
	"github.com/hemanthk92/regdesk/internal/storage"
)

// ErrSessionNotFound is returned when a session ID is unknown to both the
// in-memory cache and the backing store.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the Store instances for all live sessions and mirrors every
// mutation to the backing storage, so a reload within the same session
// recovers in-progress edits.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	db     storage.Store
}

// NewManager creates a session manager backed by the given store.
func NewManager(db storage.Store) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		db:     db,
	}
}

// Create starts a new empty session and returns its ID.
func (m *Manager) Create(ctx context.Context) (string, error) {
	sessionID := uuid.New().String()
	store := NewStore()

	if err := m.db.SaveSession(ctx, store.Snapshot(sessionID)); err != nil {
		return "", fmt.Errorf("failed to persist new session: %w", err)
	}

	m.mu.Lock()
	m.stores[sessionID] = store
	m.mu.Unlock()

	slog.Info("Session created", "session_id", sessionID)
	return sessionID, nil
}

// Get returns the Store for a session, loading it from the backing storage
// if this process has not seen it yet (e.g. after a server restart within
// the session's lifetime).
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	snap, err := m.db.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if snap == nil {
		return nil, ErrSessionNotFound
	}

	store = NewStore()
	store.Restore(snap)

	m.mu.Lock()
	// Another request may have loaded it concurrently; keep the first.
	if existing, ok := m.stores[sessionID]; ok {
		store = existing
	} else {
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	return store, nil
}

// SwitchSchool activates a school context on the session and persists the
// result. It reports whether prior slot state was dropped.
func (m *Manager) SwitchSchool(ctx context.Context, sessionID, schoolRegID string) (bool, error) {
	store, err := m.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	reset := store.SwitchSchool(schoolRegID)
	if reset {
		slog.Info("School context switched", "session_id", sessionID, "school_reg_id", schoolRegID)
	}
	return reset, m.persist(ctx, sessionID, store)
}

// UpdateSlot applies a partial edit to a slot and persists the result.
func (m *Manager) UpdateSlot(ctx context.Context, sessionID string, slot int, u models.TeamUpdate) (models.TeamRecord, error) {
	store, err := m.Get(ctx, sessionID)
	if err != nil {
		return models.TeamRecord{}, err
	}
	rec := store.UpdateSlot(slot, u)
	return rec, m.persist(ctx, sessionID, store)
}

// RemoveSlots drops the given slots from the session's draft and persists
// the result.
func (m *Manager) RemoveSlots(ctx context.Context, sessionID string, slots []int) error {
	store, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	store.RemoveSlots(slots)
	return m.persist(ctx, sessionID, store)
}

// Delete drops a session from the cache and the backing store. The front
// end calls this when registration wraps up; unknown IDs are a no-op.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.stores, sessionID)
	m.mu.Unlock()

	if err := m.db.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("Session deleted", "session_id", sessionID)
	return nil
}

// Persist writes the session's current state through to storage. Callers
// that mutate a Store directly (reconciliation, submission) use this to
// keep the mirror current.
func (m *Manager) Persist(ctx context.Context, sessionID string) error {
	store, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	return m.persist(ctx, sessionID, store)
}

func (m *Manager) persist(ctx context.Context, sessionID string, store *Store) error {
	if err := m.db.SaveSession(ctx, store.Snapshot(sessionID)); err != nil {
		slog.Error("Failed to persist session", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

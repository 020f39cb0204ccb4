// Package draft holds per-session draft state for team registrations: the
// active school context plus a mapping of slot number to partially filled
// team record. All mutations are in-memory; persistence is layered on top
// by Manager.
package draft

import (
	"sort"
	"sync"
	"time"

	"github.com/hemanthk92/regdesk/internal/models"
)

// Store is the draft state for one session. All slot state is scoped to the
// active school; switching schools replaces the mapping entirely.
//
// Every operation is total: out-of-range or missing slot numbers are
// ignored rather than reported, since the store only mirrors what the user
// has typed.
type Store struct {
	mu          sync.Mutex
	schoolRegID string
	slots       map[int]models.TeamRecord
}

// NewStore returns an empty store with no active school.
func NewStore() *Store {
	return &Store{slots: make(map[int]models.TeamRecord)}
}

// SchoolRegID returns the active school context, empty if none.
func (s *Store) SchoolRegID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schoolRegID
}

// SwitchSchool activates the given school context. If the school differs
// from the current one, all slot state is dropped. Redundant calls with the
// same ID leave the slots untouched; without this guard, re-entering the
// slot grid would silently destroy the user's drafts.
//
// It reports whether the slot mapping was reset.
func (s *Store) SwitchSchool(schoolRegID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if schoolRegID == s.schoolRegID {
		return false
	}
	s.schoolRegID = schoolRegID
	s.slots = make(map[int]models.TeamRecord)
	return true
}

// UpdateSlot merges the partial update into the record at slot, creating it
// if absent. The merge is shallow except for Members, which is replaced
// wholesale when provided, and returns the resulting record.
//
// Out-of-range slot numbers are a no-op and return a zero record.
func (s *Store) UpdateSlot(slot int, u models.TeamUpdate) models.TeamRecord {
	if !models.ValidSlot(slot) {
		return models.TeamRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.slots[slot]
	if u.TeamName != nil {
		rec.TeamName = *u.TeamName
	}
	if u.Event != nil {
		rec.Event = *u.Event
	}
	if u.TeamSize != nil {
		rec.TeamSize = *u.TeamSize
	}
	if u.Members != nil {
		rec.Members = make([]models.Member, len(u.Members))
		copy(rec.Members, u.Members)
	}
	s.slots[slot] = rec
	return rec.Clone()
}

// SetSlot stores a full record at slot, replacing whatever was there.
func (s *Store) SetSlot(slot int, rec models.TeamRecord) {
	if !models.ValidSlot(slot) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = rec.Clone()
}

// Slot returns the draft record at slot and whether one exists.
func (s *Store) Slot(slot int) (models.TeamRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.slots[slot]
	return rec.Clone(), ok
}

// Slots returns a copy of the full draft mapping.
func (s *Store) Slots() map[int]models.TeamRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]models.TeamRecord, len(s.slots))
	for n, rec := range s.slots {
		out[n] = rec.Clone()
	}
	return out
}

// SlotNumbers returns the numbers of all draft slots in ascending order.
func (s *Store) SlotNumbers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	nums := make([]int, 0, len(s.slots))
	for n := range s.slots {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// RemoveSlots deletes the given slot numbers from the draft mapping.
// Missing keys are no-ops, not errors.
func (s *Store) RemoveSlots(slots []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range slots {
		delete(s.slots, n)
	}
}

// FilledCount returns the number of slots currently holding draft data.
func (s *Store) FilledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Snapshot captures the store's state for persistence.
func (s *Store) Snapshot(sessionID string) *models.DraftSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make(map[int]models.TeamRecord, len(s.slots))
	for n, rec := range s.slots {
		slots[n] = rec.Clone()
	}
	return &models.DraftSnapshot{
		SessionID:   sessionID,
		SchoolRegID: s.schoolRegID,
		Slots:       slots,
		UpdatedAt:   time.Now().Unix(),
	}
}

// Restore replaces the store's state with the snapshot's contents.
func (s *Store) Restore(snap *models.DraftSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schoolRegID = snap.SchoolRegID
	s.slots = make(map[int]models.TeamRecord, len(snap.Slots))
	for n, rec := range snap.Slots {
		s.slots[n] = rec.Clone()
	}
}

// Package editor applies field-level edits to one slot's draft record. It
// owns the validation that gates step advancement, the member-list resize
// policy, and the per-school event option filtering.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hemanthk92/regdesk/internal/draft"
	"github.com/hemanthk92/regdesk/internal/models"
	"github.com/hemanthk92/regdesk/internal/upstream"
)

var (
	// ErrSlotOutOfRange means the slot number is outside 1..MaxSlots.
	ErrSlotOutOfRange = fmt.Errorf("slot number must be between 1 and %d", models.MaxSlots)

	// ErrBadTeamSize means a declared size outside MinTeamSize..MaxTeamSize.
	ErrBadTeamSize = fmt.Errorf("team size must be between %d and %d", models.MinTeamSize, models.MaxTeamSize)

	// ErrBadGender means a member gender outside the accepted set.
	ErrBadGender = errors.New(`gender must be "Male", "Female" or "Other"`)
)

// Form steps of the slot editor.
const (
	StepTeamDetails = 0
	StepMembers     = 1
)

// EventsLister is the single upstream call the editor needs.
type EventsLister interface {
	Events(ctx context.Context, schoolRegID string) (*upstream.EventAvailability, error)
}

// Editor binds slot-scoped edits to a session's draft store.
type Editor struct {
	events EventsLister
}

// New creates an editor reading event availability from the given lister.
func New(events EventsLister) *Editor {
	return &Editor{events: events}
}

// ApplyUpdate validates and applies a partial edit to one slot.
//
// When the update changes the declared team size without supplying a new
// member list, the existing list is resized to the new length: extra
// entries are discarded and added entries start blank. Partially filled
// members beyond the new size are assumed invalid once the size shrinks,
// so they are dropped rather than preserved.
func (e *Editor) ApplyUpdate(store *draft.Store, slot int, u models.TeamUpdate) (models.TeamRecord, error) {
	if !models.ValidSlot(slot) {
		return models.TeamRecord{}, ErrSlotOutOfRange
	}
	if u.TeamSize != nil && (*u.TeamSize < models.MinTeamSize || *u.TeamSize > models.MaxTeamSize) {
		return models.TeamRecord{}, ErrBadTeamSize
	}
	for _, m := range u.Members {
		if m.Gender != "" && m.Gender != "Male" && m.Gender != "Female" && m.Gender != "Other" {
			return models.TeamRecord{}, ErrBadGender
		}
	}

	if u.TeamSize != nil && u.Members == nil {
		prev, _ := store.Slot(slot)
		if *u.TeamSize != prev.TeamSize {
			u.Members = ResizeMembers(prev.Members, *u.TeamSize)
		}
	}

	return store.UpdateSlot(slot, u), nil
}

// ResizeMembers returns members truncated or extended to length n, filling
// new entries with blanks.
func ResizeMembers(members []models.Member, n int) []models.Member {
	out := make([]models.Member, n)
	copy(out, members)
	return out
}

// ValidateStep reports whether the record may advance past the given form
// step. Step 0 requires the team metadata; step 1 requires a fully filled
// member list matching the declared size.
func ValidateStep(rec models.TeamRecord, step int) error {
	switch step {
	case StepTeamDetails:
		if rec.TeamName == "" {
			return errors.New("team name is required")
		}
		if rec.Event == "" {
			return errors.New("event category is required")
		}
		if rec.TeamSize < models.MinTeamSize || rec.TeamSize > models.MaxTeamSize {
			return ErrBadTeamSize
		}
		return nil
	case StepMembers:
		if len(rec.Members) != rec.TeamSize {
			return fmt.Errorf("expected %d members, have %d", rec.TeamSize, len(rec.Members))
		}
		for i, m := range rec.Members {
			if !m.Filled() {
				return fmt.Errorf("member %d is incomplete", i+1)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown form step %d", step)
	}
}

// EventOption is one selectable event for a slot.
type EventOption struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// EventOptions returns the event choices for a slot of the active school.
// Events at their per-school team cap come back disabled. The slot's own
// current selection never counts against itself, so re-opening a slot to
// edit it does not report its own event as full.
func (e *Editor) EventOptions(ctx context.Context, store *draft.Store, slot int) ([]EventOption, error) {
	if !models.ValidSlot(slot) {
		return nil, ErrSlotOutOfRange
	}
	schoolRegID := store.SchoolRegID()
	if schoolRegID == "" {
		return nil, errors.New("no active school context")
	}

	avail, err := e.events.Events(ctx, schoolRegID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event availability: %w", err)
	}
	if !avail.Success && avail.Message != "" {
		return nil, fmt.Errorf("failed to fetch event availability: %s", avail.Message)
	}

	own := ""
	if rec, ok := store.Slot(slot); ok {
		own = rec.Event
	}

	options := make([]EventOption, 0, len(avail.AvailableEvents))
	for _, code := range avail.AvailableEvents {
		disabled := slices.Contains(avail.DisabledEvents, code) && code != own
		options = append(options, EventOption{
			Code:     code,
			Label:    models.EventLabel(code),
			Disabled: disabled,
		})
	}

	slog.Debug("Event options computed",
		"school_reg_id", schoolRegID,
		"slot", slot,
		"options", len(options),
	)
	return options, nil
}

// Package reconcile purges local drafts for slots the upstream has already
// confirmed, so a slot is never both Draft and Registered. It runs on every
// entry to the slot grid, independent of any HTTP handler lifecycle, which
// keeps it unit-testable without a server.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hemanthk92/regdesk/internal/draft"
	"github.com/hemanthk92/regdesk/internal/models"
	"github.com/hemanthk92/regdesk/internal/upstream"
)

// ErrStaleSchool is returned when the upstream response arrives after the
// session has switched to a different school. The response is discarded;
// applying it would purge drafts belonging to the new school.
var ErrStaleSchool = errors.New("school context changed during reconciliation")

// TeamLister is the single upstream call reconciliation needs.
type TeamLister interface {
	ListTeams(ctx context.Context, schoolRegID string) ([]upstream.RegisteredTeam, error)
}

// Engine reconciles draft state against upstream-confirmed registrations.
type Engine struct {
	teams TeamLister
}

// NewEngine creates an engine reading confirmed registrations from the
// given lister.
func NewEngine(teams TeamLister) *Engine {
	return &Engine{teams: teams}
}

// Result reports what a reconciliation pass found and did.
type Result struct {
	// RegisteredSlots are the slot numbers the upstream has confirmed,
	// ascending.
	RegisteredSlots []int

	// RemovedSlots are the draft slots purged because they turned out to
	// be confirmed, ascending.
	RemovedSlots []int
}

// Reconcile fetches the confirmed registrations for schoolRegID and removes
// any matching draft slots from the store.
//
// A fetch failure leaves the draft untouched and is returned to the caller;
// assuming an empty confirmed set would present every slot as Draft and
// invite duplicate submissions.
func (e *Engine) Reconcile(ctx context.Context, store *draft.Store, schoolRegID string) (Result, error) {
	if store.SchoolRegID() != schoolRegID {
		return Result{}, ErrStaleSchool
	}

	teams, err := e.teams.ListTeams(ctx, schoolRegID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list registered teams: %w", err)
	}

	// The fetch suspends; the session may have moved on while it ran.
	if store.SchoolRegID() != schoolRegID {
		return Result{}, ErrStaleSchool
	}

	registered := make([]int, 0, len(teams))
	seen := make(map[int]bool, len(teams))
	for _, t := range teams {
		if !seen[t.TeamNumber] {
			seen[t.TeamNumber] = true
			registered = append(registered, t.TeamNumber)
		}
	}
	sort.Ints(registered)

	var removed []int
	for _, n := range registered {
		if _, ok := store.Slot(n); ok {
			removed = append(removed, n)
		}
	}
	store.RemoveSlots(registered)

	if len(removed) > 0 {
		slog.Info("Purged drafts for registered slots",
			"school_reg_id", schoolRegID,
			"removed_slots", removed,
		)
	}

	return Result{RegisteredSlots: registered, RemovedSlots: removed}, nil
}

// Grid computes the displayed status of every slot: Registered when the
// upstream confirms it, Draft when local data exists, Empty otherwise.
// Status is derived here rather than stored so the three states can never
// disagree.
func Grid(slots map[int]models.TeamRecord, registeredSlots []int) [models.MaxSlots]models.SlotStatus {
	registered := make(map[int]bool, len(registeredSlots))
	for _, n := range registeredSlots {
		registered[n] = true
	}

	var grid [models.MaxSlots]models.SlotStatus
	for i := range grid {
		n := i + 1
		switch {
		case registered[n]:
			grid[i] = models.SlotRegistered
		case hasSlot(slots, n):
			grid[i] = models.SlotDraft
		default:
			grid[i] = models.SlotEmpty
		}
	}
	return grid
}

func hasSlot(slots map[int]models.TeamRecord, n int) bool {
	_, ok := slots[n]
	return ok
}

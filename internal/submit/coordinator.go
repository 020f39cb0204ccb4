// Package submit turns a session's eligible drafts into a single upstream
// batch-create request and applies the accepted subset back onto the draft
// store. This is the one boundary where a network failure must stay
// user-visible and retryable: it guards the registration counts.
package submit

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

var (
	// ErrNothingToSubmit means every draft slot is either absent or
	// already registered; no request is made.
	ErrNothingToSubmit = errors.New("no new teams to submit")

	// ErrStaleSchool means the session's school context changed between
	// planning and submission; the plan is discarded.
	ErrStaleSchool = errors.New("school context changed during submission")

	// ErrRejected means the upstream processed the request but accepted
	// none of the teams.
	ErrRejected = errors.New("submission rejected")
)

// BatchSubmitter is the single upstream call the coordinator needs.
type BatchSubmitter interface {
	RegisterBatch(ctx context.Context, req upstream.BatchRequest) (*upstream.BatchResponse, error)
}

// Coordinator plans and executes batch submissions.
type Coordinator struct {
	api BatchSubmitter
}

// NewCoordinator creates a coordinator submitting through the given API.
func NewCoordinator(api BatchSubmitter) *Coordinator {
	return &Coordinator{api: api}
}

// Plan is the delta between draft and confirmed state, plus the sequential
// confirmation summary shown before the final irreversible action.
type Plan struct {
	SchoolRegID string

	// Teams are the submission-eligible drafts keyed by slot number:
	// complete records whose slot the upstream has not confirmed.
	Teams map[int]models.TeamRecord

	// Incomplete lists draft slots held back because their records fail
	// completeness validation. They stay Draft and are not submitted.
	Incomplete []int

	// RegisteredCount is how many slots the upstream already confirmed.
	RegisteredCount int

	// Steps are the confirmation lines the user must advance through, in
	// order, before submission is enabled.
	Steps []string
}

// NewCount returns the number of teams the plan would submit.
func (p Plan) NewCount() int { return len(p.Teams) }

// SlotNumbers returns the planned slot numbers in ascending order.
func (p Plan) SlotNumbers() []int {
	nums := make([]int, 0, len(p.Teams))
	for n := range p.Teams {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// BuildPlan computes the submission delta for the store's drafts against
// the given confirmed slots. Registered slots are excluded again here even
// though reconciliation already purged them: the confirmed list may be
// stale by the time the user clicks submit.
func BuildPlan(store *draft.Store, registeredSlots []int) (Plan, error) {
	registered := make(map[int]bool, len(registeredSlots))
	for _, n := range registeredSlots {
		registered[n] = true
	}

	plan := Plan{
		SchoolRegID:     store.SchoolRegID(),
		Teams:           make(map[int]models.TeamRecord),
		RegisteredCount: len(registered),
	}

	for n, rec := range store.Slots() {
		if registered[n] {
			continue
		}
		if !rec.Complete() {
			plan.Incomplete = append(plan.Incomplete, n)
			continue
		}
		plan.Teams[n] = rec
	}
	sort.Ints(plan.Incomplete)

	if len(plan.Teams) == 0 {
		return plan, ErrNothingToSubmit
	}

	newCount := len(plan.Teams)
	plural := ""
	if newCount != 1 {
		plural = "s"
	}
	plan.Steps = []string{
		fmt.Sprintf("You have already registered %d out of %d teams.", plan.RegisteredCount, models.MaxSlots),
		fmt.Sprintf("You are about to submit %d more team%s.", newCount, plural),
		fmt.Sprintf("After submission, your school will have %d out of %d teams registered.",
			plan.RegisteredCount+newCount, models.MaxSlots),
	}
	return plan, nil
}

// Result reports the outcome of a submission.
type Result struct {
	// Accepted are the slot numbers the upstream confirmed, ascending.
	// Exactly these slots were removed from the draft.
	Accepted []int

	// Pending are the requested slots the upstream did not accept (e.g. a
	// concurrent submitter won the slot). They remain Draft and must be
	// surfaced to the user, never silently dropped.
	Pending []int

	// Teams carries the upstream's records for the accepted teams.
	Teams []upstream.RegisteredTeam
}

// Submit issues the batch-create request for the plan and removes exactly
// the accepted slots from the draft store.
//
// On transport failure nothing changes locally, so a retry resends exactly
// the slots still in Draft.
func (c *Coordinator) Submit(ctx context.Context, store *draft.Store, plan Plan) (Result, error) {
	if plan.NewCount() == 0 {
		return Result{}, ErrNothingToSubmit
	}
	if store.SchoolRegID() != plan.SchoolRegID {
		return Result{}, ErrStaleSchool
	}

	req := upstream.BatchRequest{SchoolRegID: plan.SchoolRegID}
	for _, n := range plan.SlotNumbers() {
		rec := plan.Teams[n]
		req.Teams = append(req.Teams, upstream.BatchTeam{
			TeamNumber: n,
			TeamName:   rec.TeamName,
			Event:      rec.Event,
			TeamSize:   rec.TeamSize,
			Members:    rec.Members,
		})
	}

	resp, err := c.api.RegisterBatch(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("batch submission failed: %w", err)
	}
	if !resp.Success {
		if resp.Message != "" {
			return Result{}, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
		}
		return Result{}, ErrRejected
	}

	// The upstream's accepted list is authoritative; the session may also
	// have moved to another school while the request was in flight, in
	// which case the response must not touch the new school's drafts.
	if store.SchoolRegID() != plan.SchoolRegID {
		return Result{}, ErrStaleSchool
	}

	accepted := make([]int, 0, len(resp.Teams))
	acceptedSet := make(map[int]bool, len(resp.Teams))
	for _, t := range resp.Teams {
		if !acceptedSet[t.TeamNumber] {
			acceptedSet[t.TeamNumber] = true
			accepted = append(accepted, t.TeamNumber)
		}
	}
	sort.Ints(accepted)

	var pending []int
	for _, n := range plan.SlotNumbers() {
		if !acceptedSet[n] {
			pending = append(pending, n)
		}
	}

	store.RemoveSlots(accepted)

	slog.Info("Batch submitted",
		"school_reg_id", plan.SchoolRegID,
		"requested", plan.NewCount(),
		"accepted", len(accepted),
		"pending", len(pending),
	)

	return Result{Accepted: accepted, Pending: pending, Teams: resp.Teams}, nil
}

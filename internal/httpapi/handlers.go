// Package httpapi exposes the regdesk HTTP surface: session lifecycle,
// the slot grid, the slot editor, batch submission, the school and
// qualifier payment flows, and the JWT-gated admin dashboard passthrough.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hemanthk92/regdesk/internal/auth"
	"github.com/hemanthk92/regdesk/internal/draft"
	"github.com/hemanthk92/regdesk/internal/editor"
	"github.com/hemanthk92/regdesk/internal/middleware"
	"github.com/hemanthk92/regdesk/internal/models"
	"github.com/hemanthk92/regdesk/internal/reconcile"
	"github.com/hemanthk92/regdesk/internal/submit"
	"github.com/hemanthk92/regdesk/internal/upstream"
)

// Handler wires the draft subsystem and the upstream client to HTTP.
type Handler struct {
	sessions *draft.Manager
	engine   *reconcile.Engine
	coord    *submit.Coordinator
	editor   *editor.Editor
	api      *upstream.Client
	jwt      *auth.JWTManager
	admin    *auth.AdminAuthenticator
}

// NewHandler creates the API handler.
func NewHandler(
	sessions *draft.Manager,
	api *upstream.Client,
	jwtManager *auth.JWTManager,
	admin *auth.AdminAuthenticator,
) *Handler {
	return &Handler{
		sessions: sessions,
		engine:   reconcile.NewEngine(api),
		coord:    submit.NewCoordinator(api),
		editor:   editor.New(api),
		api:      api,
		jwt:      jwtManager,
		admin:    admin,
	}
}

// ---- session lifecycle ----

// CreateSession starts a fresh draft session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.sessions.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sessionID})
}

// GetSession returns a summary of the session's draft state.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schoolRegId": store.SchoolRegID(),
		"filledCount": store.FilledCount(),
		"draftSlots":  store.SlotNumbers(),
	})
}

// DeleteSession discards a session and its persisted drafts.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkpoint validates a school registration ID (and optionally the
// coordinator email) with the upstream, then activates that school on the
// session. Activating the same school twice is harmless; activating a
// different school drops all prior drafts.
func (h *Handler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SchoolRegID string `json:"schoolRegId"`
		Email       string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.SchoolRegID == "" {
		writeError(w, http.StatusBadRequest, "schoolRegId is required")
		return
	}

	validation, err := h.api.ValidateSchool(r.Context(), req.SchoolRegID, req.Email)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if !validation.Valid {
		msg := validation.Message
		if msg == "" {
			msg = "school validation failed"
		}
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if validation.TeamCount >= validation.MaxTeams {
		writeError(w, http.StatusUnprocessableEntity, "school has reached its team limit")
		return
	}

	sessionID := chi.URLParam(r, "sid")
	reset, err := h.sessions.SwitchSchool(r.Context(), sessionID, req.SchoolRegID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"schoolRegId":   req.SchoolRegID,
		"teamCount":     validation.TeamCount,
		"maxTeams":      validation.MaxTeams,
		"draftsDropped": reset,
	})
}

// ---- slot grid ----

type gridSlot struct {
	Slot     int               `json:"slot"`
	Status   models.SlotStatus `json:"status"`
	TeamName string            `json:"teamName,omitempty"`
	Event    string            `json:"event,omitempty"`
}

// Grid reconciles the session's drafts against upstream-confirmed
// registrations and returns the status of all slots. A reconciliation
// failure leaves drafts untouched and is reported as retryable.
func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	schoolRegID := store.SchoolRegID()
	if schoolRegID == "" {
		writeError(w, http.StatusConflict, "no active school context; validate a school first")
		return
	}

	res, err := h.engine.Reconcile(r.Context(), store, schoolRegID)
	if err != nil {
		if errors.Is(err, reconcile.ErrStaleSchool) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}

	if err := h.sessions.Persist(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	slots := store.Slots()
	grid := reconcile.Grid(slots, res.RegisteredSlots)
	out := make([]gridSlot, models.MaxSlots)
	for i, status := range grid {
		n := i + 1
		out[i] = gridSlot{Slot: n, Status: status}
		if rec, ok := slots[n]; ok && status == models.SlotDraft {
			out[i].TeamName = rec.TeamName
			out[i].Event = rec.Event
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"schoolRegId":     schoolRegID,
		"slots":           out,
		"filledCount":     store.FilledCount(),
		"registeredCount": len(res.RegisteredSlots),
		"removedSlots":    res.RemovedSlots,
	})
}

// ---- slot editor ----

// GetSlot returns the draft record bound to one slot.
func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	rec, exists := store.Slot(slot)
	writeJSON(w, http.StatusOK, map[string]any{
		"slot":     slot,
		"exists":   exists,
		"record":   rec,
		"complete": rec.Complete(),
	})
}

// UpdateSlot applies a partial edit to one slot's draft.
func (h *Handler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var u models.TeamUpdate
	if !decode(w, r, &u) {
		return
	}

	rec, err := h.editor.ApplyUpdate(store, slot, u)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.sessions.Persist(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slot":     slot,
		"record":   rec,
		"complete": rec.Complete(),
	})
}

// ResizeSlot changes the declared team size, regenerating the member list
// to the new length (extra entries discarded, new entries blank).
func (h *Handler) ResizeSlot(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	var req struct {
		TeamSize int `json:"teamSize"`
	}
	if !decode(w, r, &req) {
		return
	}

	rec, err := h.editor.ApplyUpdate(store, slot, models.TeamUpdate{TeamSize: &req.TeamSize})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.sessions.Persist(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"slot": slot, "record": rec})
}

// SlotEvents returns the event options for a slot, with capacity-disabled
// events flagged. The slot's own selection never reports as full.
func (h *Handler) SlotEvents(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}

	options, err := h.editor.EventOptions(r.Context(), store, slot)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot": slot, "events": options})
}

// ---- submission ----

// SubmissionPlan returns the current delta and the confirmation steps the
// user must walk through before submitting.
func (h *Handler) SubmissionPlan(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	schoolRegID := store.SchoolRegID()
	if schoolRegID == "" {
		writeError(w, http.StatusConflict, "no active school context")
		return
	}

	res, err := h.engine.Reconcile(r.Context(), store, schoolRegID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	plan, err := submit.BuildPlan(store, res.RegisteredSlots)
	if err != nil && !errors.Is(err, submit.ErrNothingToSubmit) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"canSubmit":       plan.NewCount() > 0,
		"newSlots":        plan.SlotNumbers(),
		"incompleteSlots": plan.Incomplete,
		"registeredCount": plan.RegisteredCount,
		"steps":           plan.Steps,
	})
}

// Submit executes the batch submission. The registered set is re-fetched
// immediately before submitting so slots confirmed since the last grid
// render are excluded rather than resubmitted.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	schoolRegID := store.SchoolRegID()
	if schoolRegID == "" {
		writeError(w, http.StatusConflict, "no active school context")
		return
	}

	res, err := h.engine.Reconcile(r.Context(), store, schoolRegID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	plan, err := submit.BuildPlan(store, res.RegisteredSlots)
	if err != nil {
		if errors.Is(err, submit.ErrNothingToSubmit) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.coord.Submit(r.Context(), store, plan)
	if err != nil {
		switch {
		case errors.Is(err, submit.ErrStaleSchool):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, submit.ErrRejected):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeUpstreamError(w, err)
		}
		return
	}

	if err := h.sessions.Persist(r.Context(), chi.URLParam(r, "sid")); err != nil {
		slog.Error("Failed to persist session after submit", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": result.Accepted,
		"pending":  result.Pending,
		"teams":    result.Teams,
	})
}

// ---- school registration stepper ----

// CheckEmail probes the upstream for duplicate school/coordinator emails.
func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SchoolEmail      string `json:"schoolEmail"`
		CoordinatorEmail string `json:"coordinatorEmail"`
	}
	if !decode(w, r, &req) {
		return
	}
	check, err := h.api.CheckEmail(r.Context(), req.SchoolEmail, req.CoordinatorEmail)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// ValidateRegistration runs server-side validation of the school
// registration form ahead of payment.
func (h *Handler) ValidateRegistration(w http.ResponseWriter, r *http.Request) {
	var form map[string]any
	if !decode(w, r, &form) {
		return
	}
	if err := h.api.ValidateRegistration(r.Context(), form); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// CreateOrder validates the registration form and opens a checkout order.
// The checkout itself happens out-of-process with the payment gateway.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var form map[string]any
	if !decode(w, r, &form) {
		return
	}
	if err := h.api.ValidateRegistration(r.Context(), form); err != nil {
		writeUpstreamError(w, err)
		return
	}
	order, err := h.api.CreateOrder(r.Context(), form)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// VerifyPayment relays the gateway callback to the upstream. A verified
// payment finalizes the school registration; the assigned school
// registration ID is bound to the session so team registration can follow
// without re-entering the checkpoint.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var proof upstream.PaymentProof
	if !decode(w, r, &proof) {
		return
	}
	result, err := h.api.VerifyPayment(r.Context(), proof)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "payment verification failed"
		}
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if result.SchoolRegID != "" {
		sessionID := chi.URLParam(r, "sid")
		if _, err := h.sessions.SwitchSchool(r.Context(), sessionID, result.SchoolRegID); err != nil {
			writeSessionError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// ---- qualifier flow ----

// QualifierCheck reports a team's qualifier status.
func (h *Handler) QualifierCheck(w http.ResponseWriter, r *http.Request) {
	status, err := h.api.QualifierCheck(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// QualifierTeam returns the confirmed team details for the qualifier form.
func (h *Handler) QualifierTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.api.TeamDetails(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// QualifierSaveMembers stores updated member details ahead of payment.
func (h *Handler) QualifierSaveMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Members []models.Member `json:"members"`
	}
	if !decode(w, r, &req) {
		return
	}
	for i, m := range req.Members {
		if !m.Filled() {
			writeError(w, http.StatusUnprocessableEntity,
				"member "+strconv.Itoa(i+1)+" is incomplete")
			return
		}
	}
	if err := h.api.QualifierTempSave(r.Context(), chi.URLParam(r, "teamId"), req.Members); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

// QualifierOrder opens a checkout order for the qualifier fee.
func (h *Handler) QualifierOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.api.QualifierCreateOrder(r.Context(), chi.URLParam(r, "teamId"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// QualifierVerify relays the qualifier payment callback.
func (h *Handler) QualifierVerify(w http.ResponseWriter, r *http.Request) {
	var proof upstream.PaymentProof
	if !decode(w, r, &proof) {
		return
	}
	result, err := h.api.QualifierVerifyPayment(r.Context(), chi.URLParam(r, "teamId"), proof)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ---- admin dashboard ----

// AdminLogin checks the configured admin credential and issues a JWT.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.admin.Authenticate(req.Email, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	token, err := h.jwt.Generate(req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// AdminSchools lists schools for the dashboard.
func (h *Handler) AdminSchools(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, h.api.ListSchools)
}

// AdminSchoolStats returns aggregate school counts.
func (h *Handler) AdminSchoolStats(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, h.api.SchoolStats)
}

// AdminTeams lists teams for the dashboard.
func (h *Handler) AdminTeams(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, h.api.ListTeamsFiltered)
}

// AdminTeamStats returns aggregate team counts.
func (h *Handler) AdminTeamStats(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, h.api.TeamStats)
}

// AdminQualifyTeam flags a team as qualified.
func (h *Handler) AdminQualifyTeam(w http.ResponseWriter, r *http.Request) {
	teamRegID := chi.URLParam(r, "teamRegId")
	if err := h.api.QualifyTeam(r.Context(), teamRegID); err != nil {
		writeUpstreamError(w, err)
		return
	}
	slog.Info("Team qualified",
		"team_reg_id", teamRegID,
		"admin", middleware.GetAdminEmail(r.Context()),
	)
	writeJSON(w, http.StatusOK, map[string]bool{"qualified": true})
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ---- helpers ----

type rawLister func(ctx context.Context, f upstream.ListFilters) (json.RawMessage, error)

func (h *Handler) passthrough(w http.ResponseWriter, r *http.Request, list rawLister) {
	q := r.URL.Query()
	filters := upstream.ListFilters{
		State:    q.Get("state"),
		District: q.Get("district"),
		Event:    q.Get("event"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
	}
	raw, err := list(r.Context(), filters)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*draft.Store, bool) {
	store, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return store, true
}

func slotParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || !models.ValidSlot(slot) {
		writeError(w, http.StatusBadRequest, "invalid slot number")
		return 0, false
	}
	return slot, true
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, draft.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "session error")
}

// writeUpstreamError maps upstream failures to responses. Transport
// failures are 502 and marked retryable; upstream status errors keep their
// message so validation feedback reaches the user.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var statusErr *upstream.StatusError
	switch {
	case errors.As(err, &statusErr):
		status := http.StatusBadGateway
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			status = statusErr.StatusCode
		}
		msg := statusErr.Message
		if msg == "" {
			msg = "upstream request failed"
		}
		writeError(w, status, msg)
	case errors.Is(err, upstream.ErrUnreachable):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"message":   "upstream unreachable, please retry",
			"retryable": true,
		})
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

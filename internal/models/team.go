package models

const (
	// MaxSlots is the per-school team limit. Slot numbers run 1..MaxSlots.
	MaxSlots = 10

	// MinTeamSize and MaxTeamSize bound the declared member count.
	MinTeamSize = 2
	MaxTeamSize = 4
)

// SlotStatus is the computed display state of a team slot.
type SlotStatus string

const (
	SlotEmpty      SlotStatus = "empty"
	SlotDraft      SlotStatus = "draft"
	SlotRegistered SlotStatus = "registered"
)

// ValidSlot reports whether n is a usable slot number.
func ValidSlot(n int) bool {
	return n >= 1 && n <= MaxSlots
}

// Member is one participant on a team.
type Member struct {
	// Name is the participant's full name.
	Name string `json:"name"`

	// ClassGrade is the participant's grade/class (free text, e.g. "9th B").
	ClassGrade string `json:"classGrade"`

	// Gender is one of "Male", "Female", "Other".
	Gender string `json:"gender"`
}

// Filled reports whether every required member field is populated.
func (m Member) Filled() bool {
	return m.Name != "" && m.ClassGrade != "" && m.Gender != ""
}

// TeamRecord is the draft payload for one slot. Any subset of fields may be
// set while the record is being edited.
type TeamRecord struct {
	// TeamName is the display name of the team.
	TeamName string `json:"teamName,omitempty"`

	// Event is the event category code (see events.go).
	Event string `json:"event,omitempty"`

	// TeamSize is the declared member count, MinTeamSize..MaxTeamSize.
	TeamSize int `json:"teamSize,omitempty"`

	// Members is the ordered member list. Its length tracks TeamSize once
	// a size has been declared.
	Members []Member `json:"members,omitempty"`
}

// Complete reports whether the record is submission-eligible: metadata set,
// member count equal to the declared size, and every member fully filled.
func (r TeamRecord) Complete() bool {
	if r.TeamName == "" || r.Event == "" {
		return false
	}
	if r.TeamSize < MinTeamSize || r.TeamSize > MaxTeamSize {
		return false
	}
	if len(r.Members) != r.TeamSize {
		return false
	}
	for _, m := range r.Members {
		if !m.Filled() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the record. The draft store hands out clones
// so callers cannot mutate stored state through the shared members slice.
func (r TeamRecord) Clone() TeamRecord {
	out := r
	if r.Members != nil {
		out.Members = make([]Member, len(r.Members))
		copy(out.Members, r.Members)
	}
	return out
}

// TeamUpdate is a partial edit of a TeamRecord. Nil fields are left
// untouched; Members, when non-nil, replaces the stored list wholesale.
type TeamUpdate struct {
	TeamName *string  `json:"teamName,omitempty"`
	Event    *string  `json:"event,omitempty"`
	TeamSize *int     `json:"teamSize,omitempty"`
	Members  []Member `json:"members,omitempty"`
}

// DraftSnapshot is a session's draft state as persisted by the storage
// layer so an in-session reload does not lose edits.
type DraftSnapshot struct {
	// SessionID identifies the browser session (tab) owning the draft.
	SessionID string

	// SchoolRegID is the active school context, empty before checkpoint.
	SchoolRegID string

	// Slots maps slot number to the draft record for that slot.
	Slots map[int]TeamRecord

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

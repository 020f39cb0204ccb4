package models

// Event category codes as used by the upstream registration API.
const (
	EventAstrobot   = "ASB"
	EventSpacePilot = "SPL"
	EventCodeX      = "CDX"
	Event3DMaker    = "TDM"
	EventInnoverse  = "INV"
)

// EventLabels maps event codes to their display names.
var EventLabels = map[string]string{
	EventAstrobot:   "Astrobot",
	EventSpacePilot: "Space Pilot",
	EventCodeX:      "CodeX",
	Event3DMaker:    "3D Maker",
	EventInnoverse:  "Innoverse",
}

// EventLabel returns the display name for a code, falling back to the code
// itself for events this build does not know about.
func EventLabel(code string) string {
	if label, ok := EventLabels[code]; ok {
		return label
	}
	return code
}

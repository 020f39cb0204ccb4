package upstream

import "github.com/hemanthk92/regdesk/internal/models"

// RegisteredTeam is one confirmed registration as reported by
// GET /team/list. Only the slot number matters for reconciliation; the
// remaining fields are carried for display.
type RegisteredTeam struct {
	TeamNumber int    `json:"teamNumber"`
	TeamRegID  string `json:"teamRegId,omitempty"`
	TeamName   string `json:"teamName,omitempty"`
	Event      string `json:"event,omitempty"`
}

// BatchTeam is one team in a batch-create request.
type BatchTeam struct {
	TeamNumber int             `json:"teamNumber"`
	TeamName   string          `json:"teamName"`
	Event      string          `json:"event"`
	TeamSize   int             `json:"teamSize"`
	Members    []models.Member `json:"members"`
}

// BatchRequest is the body of POST /team/registerBatch.
type BatchRequest struct {
	SchoolRegID string      `json:"schoolRegId"`
	Teams       []BatchTeam `json:"teams"`
}

// BatchResponse reports which teams the server actually accepted; the
// accepted set may be a strict subset of the request when another submitter
// won a slot first.
type BatchResponse struct {
	Success bool             `json:"success"`
	Teams   []RegisteredTeam `json:"teams"`
	Message string           `json:"message,omitempty"`
}

// EventAvailability is the body of GET /events/{schoolRegId}.
type EventAvailability struct {
	Success         bool     `json:"success"`
	AvailableEvents []string `json:"availableEvents"`
	DisabledEvents  []string `json:"disabledEvents"`
	Message         string   `json:"message,omitempty"`
}

// SchoolValidation is the body of POST /team/validateSchool.
type SchoolValidation struct {
	Valid     bool   `json:"valid"`
	TeamCount int    `json:"teamCount"`
	MaxTeams  int    `json:"maxTeams"`
	Message   string `json:"message,omitempty"`
}

// TeamDetails is the body of GET /team/details/{teamId}.
type TeamDetails struct {
	TeamRegID   string          `json:"teamRegId,omitempty"`
	TeamName    string          `json:"teamName"`
	Event       string          `json:"event"`
	SchoolRegID string          `json:"schoolRegId,omitempty"`
	Members     []models.Member `json:"members"`
}

// EmailCheck is the duplicate-probe result from POST /school/check-email.
// The upstream signals duplicates through an error status whose body
// carries these fields.
type EmailCheck struct {
	SchoolEmailDuplicate      bool     `json:"schoolEmailDuplicate"`
	CoordinatorEmailDuplicate bool     `json:"coordinatorEmailDuplicate"`
	Reasons                   []string `json:"reasons,omitempty"`
	Message                   string   `json:"message,omitempty"`
}

// PaymentOrder is a created checkout order. Checkout itself happens
// out-of-process with the gateway; regdesk only relays the order handle.
type PaymentOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// PaymentProof carries the gateway callback fields the upstream verifies.
type PaymentProof struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// PaymentResult is the body of POST /payments/verify.
type PaymentResult struct {
	Success     bool   `json:"success"`
	SchoolRegID string `json:"schoolRegId,omitempty"`
	Message     string `json:"message,omitempty"`
}

// QualifierStatus is the body of GET /qualifier/check/{teamId}.
type QualifierStatus struct {
	Qualified bool `json:"qualified"`
	Paid      bool `json:"paid"`
}

// ListFilters narrows the admin dashboard list and stats queries. Zero
// values are omitted from the query string.
type ListFilters struct {
	State    string
	District string
	Event    string
	Status   string
	Search   string
}

// Package upstream is a typed JSON client for the remote registration API.
// The upstream service owns all registration truth; regdesk only reads
// confirmed state and submits drafts.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hemanthk92/regdesk/internal/models"
)

// DefaultTimeout matches the upstream's slowest endpoints (batch create,
// payment verification).
const DefaultTimeout = 60 * time.Second

// ErrUnreachable wraps transport-level failures (DNS, refused connection,
// timeout). Callers treat these as retryable without any state change.
var ErrUnreachable = errors.New("upstream unreachable")

// StatusError is a non-2xx upstream response. Message is taken from the
// response body when the upstream supplies one.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// Client talks to the registration API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API rooted at baseURL (e.g.
// "http://localhost:5000/api"). A zero timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListTeams returns the confirmed registrations for a school, the input to
// reconciliation.
func (c *Client) ListTeams(ctx context.Context, schoolRegID string) ([]RegisteredTeam, error) {
	var teams []RegisteredTeam
	q := url.Values{"schoolRegId": {schoolRegID}}
	if err := c.get(ctx, "/team/list?"+q.Encode(), &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// RegisterBatch submits a batch of draft teams in a single request and
// returns the accepted subset.
func (c *Client) RegisterBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	var resp BatchResponse
	if err := c.post(ctx, "/team/registerBatch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events returns the available and capacity-disabled event codes for a
// school.
func (c *Client) Events(ctx context.Context, schoolRegID string) (*EventAvailability, error) {
	var resp EventAvailability
	if err := c.get(ctx, "/events/"+url.PathEscape(schoolRegID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TeamDetails looks up a single confirmed team. The upstream wraps the
// record in a "team" envelope on some deployments and returns it bare on
// others; both are accepted.
func (c *Client) TeamDetails(ctx context.Context, teamID string) (*TeamDetails, error) {
	var raw struct {
		Team *TeamDetails `json:"team"`
		TeamDetails
	}
	if err := c.get(ctx, "/team/details/"+url.PathEscape(teamID), &raw); err != nil {
		return nil, err
	}
	if raw.Team != nil {
		return raw.Team, nil
	}
	return &raw.TeamDetails, nil
}

// ValidateSchool checks a school registration ID (and optionally the
// coordinator email) before team registration may begin.
func (c *Client) ValidateSchool(ctx context.Context, schoolRegID, email string) (*SchoolValidation, error) {
	body := map[string]string{"schoolRegId": schoolRegID}
	if email != "" {
		body["email"] = email
	}
	var resp SchoolValidation
	if err := c.post(ctx, "/team/validateSchool", body, &resp); err != nil {
		return nil, err
	}
	if resp.MaxTeams == 0 {
		resp.MaxTeams = 10
	}
	return &resp, nil
}

// CheckEmail probes for duplicate school/coordinator emails. A duplicate is
// reported through the upstream's error status, which this method folds
// into the returned EmailCheck rather than an error.
func (c *Client) CheckEmail(ctx context.Context, schoolEmail, coordinatorEmail string) (*EmailCheck, error) {
	body := map[string]string{
		"schoolEmail":      schoolEmail,
		"coordinatorEmail": coordinatorEmail,
	}
	var ok struct{}
	err := c.post(ctx, "/school/check-email", body, &ok)
	if err == nil {
		return &EmailCheck{}, nil
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && len(statusErr.Body) > 0 {
		var check EmailCheck
		if jsonErr := json.Unmarshal(statusErr.Body, &check); jsonErr == nil &&
			(check.SchoolEmailDuplicate || check.CoordinatorEmailDuplicate || len(check.Reasons) > 0) {
			return &check, nil
		}
	}
	return nil, err
}

// ValidateRegistration submits the full school registration form for
// server-side validation ahead of payment.
func (c *Client) ValidateRegistration(ctx context.Context, form map[string]any) error {
	var resp struct{}
	return c.post(ctx, "/school/validate", form, &resp)
}

// CreateOrder opens a checkout order for the school registration fee.
func (c *Client) CreateOrder(ctx context.Context, form map[string]any) (*PaymentOrder, error) {
	var resp PaymentOrder
	if err := c.post(ctx, "/payments/create-order", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyPayment confirms a completed checkout with the upstream, which
// finalizes the school registration and assigns its registration ID.
func (c *Client) VerifyPayment(ctx context.Context, proof PaymentProof) (*PaymentResult, error) {
	var resp PaymentResult
	if err := c.post(ctx, "/payments/verify", proof, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QualifierCheck reports whether a team is qualified and has paid the
// qualifier fee.
func (c *Client) QualifierCheck(ctx context.Context, teamID string) (*QualifierStatus, error) {
	var resp QualifierStatus
	if err := c.get(ctx, "/qualifier/check/"+url.PathEscape(teamID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QualifierTempSave stores updated member details for a qualified team
// ahead of payment.
func (c *Client) QualifierTempSave(ctx context.Context, teamID string, members []models.Member) error {
	body := map[string]any{"teamId": teamID, "members": members}
	var resp struct{}
	return c.post(ctx, "/qualifier/tempSave", body, &resp)
}

// QualifierCreateOrder opens a checkout order for the qualifier fee.
func (c *Client) QualifierCreateOrder(ctx context.Context, teamID string) (*PaymentOrder, error) {
	var resp PaymentOrder
	if err := c.post(ctx, "/qualifier/create-order", map[string]string{"teamId": teamID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QualifierVerifyPayment confirms a completed qualifier checkout.
func (c *Client) QualifierVerifyPayment(ctx context.Context, teamID string, proof PaymentProof) (*PaymentResult, error) {
	body := map[string]string{
		"teamId":              teamID,
		"razorpay_payment_id": proof.PaymentID,
		"razorpay_order_id":   proof.OrderID,
		"razorpay_signature":  proof.Signature,
	}
	var resp PaymentResult
	if err := c.post(ctx, "/qualifier/verify-payment", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSchools returns the filtered school list for the admin dashboard.
// The row shape is owned by the upstream and passed through untouched.
func (c *Client) ListSchools(ctx context.Context, f ListFilters) (json.RawMessage, error) {
	return c.getRaw(ctx, "/school/list", f)
}

// SchoolStats returns aggregate school counts for the admin dashboard.
func (c *Client) SchoolStats(ctx context.Context, f ListFilters) (json.RawMessage, error) {
	return c.getRaw(ctx, "/school/stats", f)
}

// ListTeamsFiltered returns the filtered team list for the admin dashboard.
func (c *Client) ListTeamsFiltered(ctx context.Context, f ListFilters) (json.RawMessage, error) {
	return c.getRaw(ctx, "/team/list", f)
}

// TeamStats returns aggregate team counts for the admin dashboard.
func (c *Client) TeamStats(ctx context.Context, f ListFilters) (json.RawMessage, error) {
	return c.getRaw(ctx, "/team/stats", f)
}

// QualifyTeam flags a team as qualified for the next round.
func (c *Client) QualifyTeam(ctx context.Context, teamRegID string) error {
	var resp struct{}
	return c.do(ctx, http.MethodPatch, "/team/qualify/"+url.PathEscape(teamRegID), nil, &resp)
}

func (f ListFilters) query() string {
	q := url.Values{}
	if f.State != "" {
		q.Set("state", f.State)
	}
	if f.District != "" {
		q.Set("district", f.District)
	}
	if f.Event != "" {
		q.Set("event", f.Event)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) getRaw(ctx context.Context, path string, f ListFilters) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path+f.query(), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Context cancellation is the caller's own doing; everything else
		// (timeout, refused connection, DNS) is a retryable transport
		// failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if os.IsTimeout(err) {
			return fmt.Errorf("%w: request timed out: %v", ErrUnreachable, err)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: data}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil {
			statusErr.Message = msg.Message
		}
		return statusErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

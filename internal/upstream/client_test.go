package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("ListTeams decodes the confirmed registrations", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/team/list" {
				t.Errorf("Unexpected path %q", r.URL.Path)
			}
			if got := r.URL.Query().Get("schoolRegId"); got != "SCH001" {
				t.Errorf("Expected schoolRegId=SCH001, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"teamNumber":3,"teamRegId":"T-3","teamName":"Alpha","event":"ASB"}]`))
		}))
		defer srv.Close()

		teams, err := New(srv.URL, 0).ListTeams(ctx, "SCH001")
		if err != nil {
			t.Fatalf("ListTeams failed: %v", err)
		}
		if len(teams) != 1 || teams[0].TeamNumber != 3 || teams[0].TeamName != "Alpha" {
			t.Errorf("Unexpected teams: %+v", teams)
		}
	})

	t.Run("RegisterBatch posts the request and decodes the accepted set", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/team/registerBatch" {
				t.Errorf("Unexpected %s %s", r.Method, r.URL.Path)
			}
			var req BatchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("Failed to decode request: %v", err)
			}
			if req.SchoolRegID != "SCH001" || len(req.Teams) != 2 {
				t.Errorf("Unexpected request: %+v", req)
			}
			_ = json.NewEncoder(w).Encode(BatchResponse{
				Success: true,
				Teams:   []RegisteredTeam{{TeamNumber: req.Teams[0].TeamNumber}},
			})
		}))
		defer srv.Close()

		resp, err := New(srv.URL, 0).RegisterBatch(ctx, BatchRequest{
			SchoolRegID: "SCH001",
			Teams:       []BatchTeam{{TeamNumber: 3}, {TeamNumber: 5}},
		})
		if err != nil {
			t.Fatalf("RegisterBatch failed: %v", err)
		}
		if !resp.Success || len(resp.Teams) != 1 {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("non-2xx becomes StatusError with the body message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"school not found"}`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, 0).ValidateSchool(ctx, "NOPE", "")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Expected StatusError, got %v", err)
		}
		if statusErr.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", statusErr.StatusCode)
		}
		if statusErr.Message != "school not found" {
			t.Errorf("Expected body message, got %q", statusErr.Message)
		}
	})

	t.Run("refused connection wraps ErrUnreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // nothing listens here anymore

		_, err := New(srv.URL, time.Second).ListTeams(ctx, "SCH001")
		if !errors.Is(err, ErrUnreachable) {
			t.Fatalf("Expected ErrUnreachable, got %v", err)
		}
	})

	t.Run("context cancellation is reported as such", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := New(srv.URL, time.Minute).ListTeams(cancelCtx, "SCH001")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Expected context deadline error, got %v", err)
		}
	})

	t.Run("ValidateSchool defaults the team cap", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"valid":true,"teamCount":4}`))
		}))
		defer srv.Close()

		v, err := New(srv.URL, 0).ValidateSchool(ctx, "SCH001", "")
		if err != nil {
			t.Fatalf("ValidateSchool failed: %v", err)
		}
		if v.MaxTeams != 10 {
			t.Errorf("Expected default max teams 10, got %d", v.MaxTeams)
		}
	})

	t.Run("CheckEmail folds duplicate error bodies into the result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"schoolEmailDuplicate":true,"reasons":["school email already registered"]}`))
		}))
		defer srv.Close()

		check, err := New(srv.URL, 0).CheckEmail(ctx, "a@b.c", "d@e.f")
		if err != nil {
			t.Fatalf("CheckEmail failed: %v", err)
		}
		if !check.SchoolEmailDuplicate {
			t.Error("Expected school email duplicate flag")
		}
		if len(check.Reasons) != 1 {
			t.Errorf("Expected one reason, got %v", check.Reasons)
		}
	})

	t.Run("CheckEmail passes clean emails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		check, err := New(srv.URL, 0).CheckEmail(ctx, "a@b.c", "d@e.f")
		if err != nil {
			t.Fatalf("CheckEmail failed: %v", err)
		}
		if check.SchoolEmailDuplicate || check.CoordinatorEmailDuplicate {
			t.Errorf("Expected no duplicates, got %+v", check)
		}
	})

	t.Run("TeamDetails accepts the team envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"team":{"teamName":"Alpha","event":"CDX"}}`))
		}))
		defer srv.Close()

		team, err := New(srv.URL, 0).TeamDetails(ctx, "T-1")
		if err != nil {
			t.Fatalf("TeamDetails failed: %v", err)
		}
		if team.TeamName != "Alpha" || team.Event != "CDX" {
			t.Errorf("Unexpected team: %+v", team)
		}
	})

	t.Run("TeamDetails accepts a bare record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"teamName":"Beta","event":"INV"}`))
		}))
		defer srv.Close()

		team, err := New(srv.URL, 0).TeamDetails(ctx, "T-2")
		if err != nil {
			t.Fatalf("TeamDetails failed: %v", err)
		}
		if team.TeamName != "Beta" {
			t.Errorf("Unexpected team: %+v", team)
		}
	})

	t.Run("admin list passthrough forwards filters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != "KA" || q.Get("event") != "ASB" {
				t.Errorf("Unexpected query %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"schoolName":"Test School"}]`))
		}))
		defer srv.Close()

		raw, err := New(srv.URL, 0).ListSchools(ctx, ListFilters{State: "KA", Event: "ASB"})
		if err != nil {
			t.Fatalf("ListSchools failed: %v", err)
		}
		var rows []map[string]any
		if err := json.Unmarshal(raw, &rows); err != nil || len(rows) != 1 {
			t.Errorf("Unexpected raw payload: %s", raw)
		}
	})
}

package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hemanthk92/regdesk/internal/models"
)

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "regdesk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	snap := &models.DraftSnapshot{
		SessionID:   "sess-1",
		SchoolRegID: "SCH001",
		Slots: map[int]models.TeamRecord{
			3: {
				TeamName: "Alpha",
				Event:    models.EventAstrobot,
				TeamSize: 2,
				Members: []models.Member{
					{Name: "A", ClassGrade: "8", Gender: "Male"},
					{Name: "B", ClassGrade: "9", Gender: "Female"},
				},
			},
			7: {TeamName: "Beta", Event: models.EventCodeX, TeamSize: 3},
		},
	}

	t.Run("SaveSession and GetSession round-trip", func(t *testing.T) {
		if err := store.SaveSession(ctx, snap); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}

		got, err := store.GetSession(ctx, "sess-1")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected snapshot, got nil")
		}
		if got.SchoolRegID != "SCH001" {
			t.Errorf("Expected school SCH001, got %q", got.SchoolRegID)
		}
		if len(got.Slots) != 2 {
			t.Fatalf("Expected 2 slots, got %d", len(got.Slots))
		}

		rec := got.Slots[3]
		if rec.TeamName != "Alpha" || rec.TeamSize != 2 {
			t.Errorf("Unexpected slot 3: %+v", rec)
		}
		if len(rec.Members) != 2 || rec.Members[0].Name != "A" || rec.Members[1].Gender != "Female" {
			t.Errorf("Unexpected members: %+v", rec.Members)
		}
		if got.UpdatedAt == 0 {
			t.Error("Expected UpdatedAt to be set")
		}
	})

	t.Run("SaveSession replaces the previous snapshot", func(t *testing.T) {
		updated := &models.DraftSnapshot{
			SessionID:   "sess-1",
			SchoolRegID: "SCH002",
			Slots: map[int]models.TeamRecord{
				1: {TeamName: "Gamma", Event: models.EventInnoverse, TeamSize: 2},
			},
		}
		if err := store.SaveSession(ctx, updated); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}

		got, err := store.GetSession(ctx, "sess-1")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got.SchoolRegID != "SCH002" {
			t.Errorf("Expected school SCH002, got %q", got.SchoolRegID)
		}
		if len(got.Slots) != 1 {
			t.Fatalf("Expected old slots replaced, got %d slots", len(got.Slots))
		}
		if got.Slots[1].TeamName != "Gamma" {
			t.Errorf("Unexpected slot 1: %+v", got.Slots[1])
		}
		if len(got.Slots[1].Members) != 0 {
			t.Errorf("Expected old members gone, got %v", got.Slots[1].Members)
		}
	})

	t.Run("GetSession returns nil for unknown sessions", func(t *testing.T) {
		got, err := store.GetSession(ctx, "never-saved")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil snapshot, got %+v", got)
		}
	})

	t.Run("DeleteSession removes the snapshot", func(t *testing.T) {
		if err := store.DeleteSession(ctx, "sess-1"); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		got, err := store.GetSession(ctx, "sess-1")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected session gone, got %+v", got)
		}
	})

	t.Run("SaveSession requires a session id", func(t *testing.T) {
		err := store.SaveSession(ctx, &models.DraftSnapshot{})
		if err == nil {
			t.Error("Expected error for empty session id")
		}
	})
}

package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/hemanthk92/regdesk/internal/draft"
	"github.com/hemanthk92/regdesk/internal/models"
	"github.com/hemanthk92/regdesk/internal/upstream"
)

type fakeEvents struct {
	avail *upstream.EventAvailability
	err   error
}

func (f *fakeEvents) Events(ctx context.Context, schoolRegID string) (*upstream.EventAvailability, error) {
	return f.avail, f.err
}

func newStore(t *testing.T) *draft.Store {
	t.Helper()
	store := draft.NewStore()
	store.SwitchSchool("SCH001")
	return store
}

func TestApplyUpdate(t *testing.T) {
	ed := New(&fakeEvents{})

	t.Run("rejects out-of-range slot", func(t *testing.T) {
		name := "Alpha"
		_, err := ed.ApplyUpdate(newStore(t), 11, models.TeamUpdate{TeamName: &name})
		if !errors.Is(err, ErrSlotOutOfRange) {
			t.Fatalf("Expected ErrSlotOutOfRange, got %v", err)
		}
	})

	t.Run("rejects team size out of bounds", func(t *testing.T) {
		for _, size := range []int{1, 5} {
			s := size
			_, err := ed.ApplyUpdate(newStore(t), 1, models.TeamUpdate{TeamSize: &s})
			if !errors.Is(err, ErrBadTeamSize) {
				t.Errorf("Size %d: expected ErrBadTeamSize, got %v", size, err)
			}
		}
	})

	t.Run("rejects unknown gender", func(t *testing.T) {
		_, err := ed.ApplyUpdate(newStore(t), 1, models.TeamUpdate{
			Members: []models.Member{{Name: "A", Gender: "X"}},
		})
		if !errors.Is(err, ErrBadGender) {
			t.Fatalf("Expected ErrBadGender, got %v", err)
		}
	})

	t.Run("shrinking team size keeps the leading members", func(t *testing.T) {
		store := newStore(t)
		size4 := 4
		_, err := ed.ApplyUpdate(store, 2, models.TeamUpdate{
			TeamSize: &size4,
			Members: []models.Member{
				{Name: "A", ClassGrade: "8", Gender: "Male"},
				{Name: "B", ClassGrade: "8", Gender: "Female"},
				{Name: "C", ClassGrade: "9", Gender: "Other"},
				{Name: "D", ClassGrade: "9", Gender: "Male"},
			},
		})
		if err != nil {
			t.Fatalf("ApplyUpdate failed: %v", err)
		}

		size2 := 2
		rec, err := ed.ApplyUpdate(store, 2, models.TeamUpdate{TeamSize: &size2})
		if err != nil {
			t.Fatalf("ApplyUpdate failed: %v", err)
		}
		if len(rec.Members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(rec.Members))
		}
		if rec.Members[0].Name != "A" || rec.Members[1].Name != "B" {
			t.Errorf("Expected leading members preserved, got %v", rec.Members)
		}
	})

	t.Run("growing team size adds blank members", func(t *testing.T) {
		store := newStore(t)
		size2 := 2
		_, err := ed.ApplyUpdate(store, 3, models.TeamUpdate{
			TeamSize: &size2,
			Members: []models.Member{
				{Name: "A", ClassGrade: "8", Gender: "Male"},
				{Name: "B", ClassGrade: "8", Gender: "Female"},
			},
		})
		if err != nil {
			t.Fatalf("ApplyUpdate failed: %v", err)
		}

		size3 := 3
		rec, err := ed.ApplyUpdate(store, 3, models.TeamUpdate{TeamSize: &size3})
		if err != nil {
			t.Fatalf("ApplyUpdate failed: %v", err)
		}
		if len(rec.Members) != 3 {
			t.Fatalf("Expected 3 members, got %d", len(rec.Members))
		}
		if rec.Members[0].Name != "A" || rec.Members[1].Name != "B" {
			t.Errorf("Expected existing members preserved, got %v", rec.Members)
		}
		if rec.Members[2] != (models.Member{}) {
			t.Errorf("Expected blank third member, got %+v", rec.Members[2])
		}
	})

	t.Run("explicit member list wins over resize", func(t *testing.T) {
		store := newStore(t)
		size2 := 2
		rec, err := ed.ApplyUpdate(store, 4, models.TeamUpdate{
			TeamSize: &size2,
			Members:  []models.Member{{Name: "Only", ClassGrade: "7", Gender: "Other"}},
		})
		if err != nil {
			t.Fatalf("ApplyUpdate failed: %v", err)
		}
		if len(rec.Members) != 1 || rec.Members[0].Name != "Only" {
			t.Errorf("Expected supplied members untouched, got %v", rec.Members)
		}
	})
}

func TestValidateStep(t *testing.T) {
	complete := models.TeamRecord{
		TeamName: "Alpha",
		Event:    models.EventAstrobot,
		TeamSize: 2,
		Members: []models.Member{
			{Name: "A", ClassGrade: "8", Gender: "Male"},
			{Name: "B", ClassGrade: "9", Gender: "Female"},
		},
	}

	tests := []struct {
		name    string
		mutate  func(r models.TeamRecord) models.TeamRecord
		step    int
		wantErr bool
	}{
		{"complete record passes team details", nil, StepTeamDetails, false},
		{"complete record passes members", nil, StepMembers, false},
		{"missing team name", func(r models.TeamRecord) models.TeamRecord {
			r.TeamName = ""
			return r
		}, StepTeamDetails, true},
		{"missing event", func(r models.TeamRecord) models.TeamRecord {
			r.Event = ""
			return r
		}, StepTeamDetails, true},
		{"size below minimum", func(r models.TeamRecord) models.TeamRecord {
			r.TeamSize = 1
			return r
		}, StepTeamDetails, true},
		{"member count mismatch", func(r models.TeamRecord) models.TeamRecord {
			r.Members = r.Members[:1]
			return r
		}, StepMembers, true},
		{"member missing grade", func(r models.TeamRecord) models.TeamRecord {
			r.Members = []models.Member{
				{Name: "A", Gender: "Male"},
				{Name: "B", ClassGrade: "9", Gender: "Female"},
			}
			return r
		}, StepMembers, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := complete
			if tt.mutate != nil {
				rec = tt.mutate(complete)
			}
			err := ValidateStep(rec, tt.step)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}

	t.Run("unknown step", func(t *testing.T) {
		if err := ValidateStep(complete, 7); err == nil {
			t.Error("Expected error for unknown step")
		}
	})
}

func TestEventOptions(t *testing.T) {
	ctx := context.Background()
	avail := &upstream.EventAvailability{
		Success:         true,
		AvailableEvents: []string{models.EventAstrobot, models.EventSpacePilot, models.EventCodeX},
		DisabledEvents:  []string{models.EventSpacePilot},
	}

	t.Run("capacity-full events come back disabled", func(t *testing.T) {
		store := newStore(t)
		options, err := New(&fakeEvents{avail: avail}).EventOptions(ctx, store, 1)
		if err != nil {
			t.Fatalf("EventOptions failed: %v", err)
		}
		byCode := map[string]EventOption{}
		for _, o := range options {
			byCode[o.Code] = o
		}
		if !byCode[models.EventSpacePilot].Disabled {
			t.Error("Expected Space Pilot disabled")
		}
		if byCode[models.EventAstrobot].Disabled || byCode[models.EventCodeX].Disabled {
			t.Error("Expected other events enabled")
		}
		if byCode[models.EventAstrobot].Label != "Astrobot" {
			t.Errorf("Expected display label, got %q", byCode[models.EventAstrobot].Label)
		}
	})

	t.Run("slot's own selection stays enabled when full", func(t *testing.T) {
		store := newStore(t)
		event := models.EventSpacePilot
		store.UpdateSlot(1, models.TeamUpdate{Event: &event})

		options, err := New(&fakeEvents{avail: avail}).EventOptions(ctx, store, 1)
		if err != nil {
			t.Fatalf("EventOptions failed: %v", err)
		}
		for _, o := range options {
			if o.Code == models.EventSpacePilot && o.Disabled {
				t.Error("Slot's own event selection reported as full")
			}
		}
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		store := newStore(t)
		_, err := New(&fakeEvents{err: errors.New("boom")}).EventOptions(ctx, store, 1)
		if err == nil {
			t.Fatal("Expected error")
		}
	})

	t.Run("requires active school", func(t *testing.T) {
		store := draft.NewStore()
		_, err := New(&fakeEvents{avail: avail}).EventOptions(ctx, store, 1)
		if err == nil {
			t.Fatal("Expected error without school context")
		}
	})
}

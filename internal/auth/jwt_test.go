package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	t.Run("round-trips claims", func(t *testing.T) {
		token, err := manager.Generate("ops@example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.Email != "ops@example.com" {
			t.Errorf("Expected email ops@example.com, got %q", claims.Email)
		}
		if claims.Role != "admin" {
			t.Errorf("Expected role admin, got %q", claims.Role)
		}
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.Generate("ops@example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Generate("ops@example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestAdminAuthenticator(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	admin := NewAdminAuthenticator("ops@example.com", hash)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid credentials", "ops@example.com", "hunter2", false},
		{"wrong password", "ops@example.com", "nope", true},
		{"wrong email", "other@example.com", "hunter2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := admin.Authenticate(tt.email, tt.password)
			if tt.wantErr && !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected success, got %v", err)
			}
		})
	}

	t.Run("unconfigured hash rejects everything", func(t *testing.T) {
		unset := NewAdminAuthenticator("", "")
		if err := unset.Authenticate("", ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
		}
	})
}

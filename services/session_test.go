package services

import (
	"errors"
	"testing"
	"time"

	"github.com/lborres/tipon/core"
)

// Requirement: Create issues an opaque token and persists only its hash.
func TestSessionManager_Create(t *testing.T) {
	// Arrange
	storage := NewFakeSessionStorage()
	sm := NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, storage, nil)

	// Act
	result, err := sm.Create("user-1", "127.0.0.1", "test-agent")

	// Assert
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("Create() returned empty token")
	}
	if result.Session.TokenHash == result.Token {
		t.Error("session must store a hash, not the raw token")
	}
	if result.Session.UserID != "user-1" {
		t.Errorf("session user = %q, want user-1", result.Session.UserID)
	}
	if !result.Session.ExpiresAt.After(time.Now()) {
		t.Error("session should expire in the future")
	}
}

// Requirement: Verify resolves a live token, rejects garbage and expiry.
func TestSessionManager_Verify(t *testing.T) {
	tests := []struct {
		name    string
		maxAge  time.Duration
		token   func(created string) string
		wantErr error
	}{
		{
			name:   "accepts a live token",
			maxAge: time.Hour,
			token:  func(created string) string { return created },
		},
		{
			name:    "rejects empty token",
			maxAge:  time.Hour,
			token:   func(string) string { return "" },
			wantErr: core.ErrInvalidToken,
		},
		{
			name:    "rejects unknown token",
			maxAge:  time.Hour,
			token:   func(string) string { return "some-other-token" },
			wantErr: core.ErrSessionNotFound,
		},
		{
			name:    "rejects expired session",
			maxAge:  -time.Minute,
			token:   func(created string) string { return created },
			wantErr: core.ErrSessionExpired,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeSessionStorage()
			sm := NewSessionManager(core.SessionConfig{MaxAge: test.maxAge}, storage, nil)
			result, err := sm.Create("user-1", "127.0.0.1", "test-agent")
			if err != nil {
				t.Fatalf("Create() error: %v", err)
			}

			// Act
			session, err := sm.Verify(test.token(result.Token))

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Verify() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() unexpected error: %v", err)
			}
			if session.UserID != "user-1" {
				t.Errorf("Verify() user = %q, want user-1", session.UserID)
			}
		})
	}
}

// Requirement: a cache hit skips storage; Destroy evicts both.
func TestSessionManager_CacheInteraction(t *testing.T) {
	// Arrange
	storage := NewFakeSessionStorage()
	cache := NewFakeCache()
	sm := NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, storage, cache)

	result, err := sm.Create("user-1", "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache holds %d sessions after Create, want 1", cache.Len())
	}

	// Act: verification hits the cache even with storage drained
	storage.getErr = errors.New("storage down")
	if _, err := sm.Verify(result.Token); err != nil {
		t.Fatalf("Verify() should hit cache, got %v", err)
	}
	storage.getErr = nil

	// Destroy evicts from cache and storage
	if err := sm.Destroy(result.Token); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d sessions after Destroy, want 0", cache.Len())
	}
	if _, err := sm.Verify(result.Token); err == nil {
		t.Error("Verify() after Destroy should fail")
	}
}

// Requirement: destroying all of a user's sessions reports the count and
// leaves other users untouched.
func TestSessionManager_DestroyAllUserSessions(t *testing.T) {
	// Arrange
	storage := NewFakeSessionStorage()
	sm := NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, storage, nil)

	for range [3]struct{}{} {
		if _, err := sm.Create("user-1", "127.0.0.1", "test-agent"); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	other, err := sm.Create("user-2", "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Act
	count, err := sm.DestroyAllUserSessions("user-1")

	// Assert
	if err != nil {
		t.Fatalf("DestroyAllUserSessions() error: %v", err)
	}
	if count != 3 {
		t.Errorf("destroyed %d sessions, want 3", count)
	}
	if _, err := sm.Verify(other.Token); err != nil {
		t.Errorf("other user's session should survive, got %v", err)
	}
}

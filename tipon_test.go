package tipon

import (
	"errors"
	"testing"

	"github.com/lborres/tipon/adapters/memory"
)

const testSecret = "secretshouldbeatleast32charslong"

// Requirement: New validates configuration before wiring anything.
func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  func() Config
		wantErr error
	}{
		{
			name: "rejects missing secret",
			config: func() Config {
				return Config{Database: memory.NewAuthStorage(), Store: memory.NewStore()}
			},
			wantErr: ErrSecretRequired,
		},
		{
			name: "rejects short secret",
			config: func() Config {
				return Config{Secret: "too-short", Database: memory.NewAuthStorage(), Store: memory.NewStore()}
			},
			wantErr: ErrSecretTooShort,
		},
		{
			name: "rejects missing database adapter",
			config: func() Config {
				return Config{Secret: testSecret, Store: memory.NewStore()}
			},
			wantErr: ErrDBAdapterRequired,
		},
		{
			name: "rejects missing document store",
			config: func() Config {
				return Config{Secret: testSecret, Database: memory.NewAuthStorage()}
			},
			wantErr: ErrStoreRequired,
		},
		{
			name: "accepts a complete config",
			config: func() Config {
				return Config{Secret: testSecret, Database: memory.NewAuthStorage(), Store: memory.NewStore()}
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			instance, err := New(test.config())

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			defer instance.Close()
			if instance.BasePath != "/api" {
				t.Errorf("BasePath = %q, want default /api", instance.BasePath)
			}
		})
	}
}

func newTestInstance(t *testing.T) *Tipon {
	t.Helper()
	instance, err := New(Config{
		Secret:   testSecret,
		Database: memory.NewAuthStorage(),
		Store:    memory.NewStore(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(instance.Close)
	return instance
}

func signUpTestUser(t *testing.T, instance *Tipon, email string) *SignUpResult {
	t.Helper()
	result, err := instance.SignUp(SignUpInput{
		Email:    email,
		Password: "SecurePass123!",
	}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("SignUp(%q) error: %v", email, err)
	}
	return result
}

// Requirement: the full loop works end to end against the in-memory
// adapters: sign-up, create, toggle, sign-out.
func TestTipon_EndToEnd(t *testing.T) {
	// Arrange
	instance := newTestInstance(t)
	result := signUpTestUser(t, instance, "alice@example.com")

	if instance.UserID() != result.User.ID {
		t.Fatalf("UserID() = %q, want %q after sign-up", instance.UserID(), result.User.ID)
	}

	// Act: create an event through the facade
	id, err := instance.CreateEvent("Team Lunch", "2024-06-15")
	if err != nil {
		t.Fatalf("CreateEvent() error: %v", err)
	}

	// Assert: the mirror confirmed the write synchronously, so the entry is
	// live and no longer pending
	projection := instance.Projection()
	if len(projection) != 1 {
		t.Fatalf("projection = %v, want one event", projection)
	}
	if projection[0].ID != id || projection[0].Pending {
		t.Errorf("projected entry = %+v, want confirmed event %q", projection[0], id)
	}
	if !projection[0].IsOwnedByCurrentUser {
		t.Error("created event should be owned by the current user")
	}

	// Toggle twice returns to the initial state
	favorited, err := instance.ToggleFavorite(id)
	if err != nil || !favorited {
		t.Fatalf("first ToggleFavorite() = (%v, %v), want (true, nil)", favorited, err)
	}
	if got := instance.Projection(); !got[0].IsFavorite {
		t.Error("projection should flag the favorite after the first toggle")
	}
	favorited, err = instance.ToggleFavorite(id)
	if err != nil || favorited {
		t.Fatalf("second ToggleFavorite() = (%v, %v), want (false, nil)", favorited, err)
	}
	if got := instance.Projection(); got[0].IsFavorite {
		t.Error("projection should drop the favorite after the second toggle")
	}

	// Sign-out clears the projection and blocks writes
	if err := instance.SignOut(result.Token); err != nil {
		t.Fatalf("SignOut() error: %v", err)
	}
	if instance.UserID() != "" {
		t.Errorf("UserID() after sign-out = %q, want empty", instance.UserID())
	}
	if got := instance.Projection(); len(got) != 0 {
		t.Errorf("projection after sign-out = %v, want empty", got)
	}
	if _, err := instance.CreateEvent("Orphan", "2024-06-16"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("CreateEvent() after sign-out = %v, want ErrNoActiveSession", err)
	}
	if err := instance.DeleteEvent(id); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("DeleteEvent() after sign-out = %v, want ErrNoActiveSession", err)
	}
}

// Requirement: update and delete flow through the gateway with their
// documented semantics.
func TestTipon_UpdateAndDelete(t *testing.T) {
	// Arrange
	instance := newTestInstance(t)
	signUpTestUser(t, instance, "alice@example.com")

	id, err := instance.CreateEvent("Draft", "2024-06-15")
	if err != nil {
		t.Fatalf("CreateEvent() error: %v", err)
	}

	// Act + Assert: update rewrites, bad dates never reach the store
	if err := instance.UpdateEvent(id, "Final", "2024-07-01"); err != nil {
		t.Fatalf("UpdateEvent() error: %v", err)
	}
	if err := instance.UpdateEvent(id, "Final", "2024-02-30"); !errors.Is(err, ErrInvalidEventDate) {
		t.Errorf("UpdateEvent() with impossible date = %v, want ErrInvalidEventDate", err)
	}
	if got := instance.Projection(); got[0].Name != "Final" || got[0].Date != "2024-07-01" {
		t.Errorf("projection after update = %+v, want Final/2024-07-01", got[0])
	}
	if err := instance.UpdateEvent("missing", "Final", "2024-07-01"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("UpdateEvent() on missing id = %v, want ErrEventNotFound", err)
	}

	// Delete is idempotent and the projection follows
	if err := instance.DeleteEvent(id); err != nil {
		t.Fatalf("DeleteEvent() error: %v", err)
	}
	if err := instance.DeleteEvent(id); err != nil {
		t.Fatalf("repeated DeleteEvent() = %v, want nil", err)
	}
	if got := instance.Projection(); len(got) != 0 {
		t.Errorf("projection after delete = %v, want empty", got)
	}
}

// Requirement: switching accounts re-scopes favorites; one user's marks never
// surface for another.
func TestTipon_AccountSwitch(t *testing.T) {
	// Arrange
	instance := newTestInstance(t)
	signUpTestUser(t, instance, "alice@example.com")

	id, err := instance.CreateEvent("Concert", "2024-07-01")
	if err != nil {
		t.Fatalf("CreateEvent() error: %v", err)
	}
	if _, err := instance.ToggleFavorite(id); err != nil {
		t.Fatalf("ToggleFavorite() error: %v", err)
	}

	// Act: a second account signs in on the same instance
	signUpTestUser(t, instance, "bob@example.com")

	// Assert
	projection := instance.Projection()
	if len(projection) != 1 {
		t.Fatalf("projection = %v, want the shared event", projection)
	}
	if projection[0].IsFavorite {
		t.Error("previous user's favorite leaked into the new session")
	}
	if projection[0].IsOwnedByCurrentUser {
		t.Error("event created by the previous user should not read as owned")
	}
}

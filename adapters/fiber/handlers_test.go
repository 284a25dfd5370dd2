package fiber

import (
	"errors"
	"net/http"
	"testing"

	"github.com/lborres/tipon/core"
)

// mockAuthProvider is a test fake implementing core.AuthProvider
type mockAuthProvider struct {
	signUpErr      error
	signUpResult   *core.SignUpResult
	signInErr      error
	signInResult   *core.SignInResult
	signOutErr     error
	getSessionErr  error
	getSessionData *core.SessionData
}

func (m *mockAuthProvider) SignUp(input core.SignUpInput, ipAddress, userAgent string) (*core.SignUpResult, error) {
	if m.signUpErr != nil {
		return nil, m.signUpErr
	}
	return m.signUpResult, nil
}

func (m *mockAuthProvider) SignIn(input core.SignInInput, ipAddress, userAgent string) (*core.SignInResult, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return m.signInResult, nil
}

func (m *mockAuthProvider) SignOut(token string) error {
	return m.signOutErr
}

func (m *mockAuthProvider) GetSession(token string) (*core.SessionData, error) {
	if m.getSessionErr != nil {
		return nil, m.getSessionErr
	}
	return m.getSessionData, nil
}

// mockEventService is a test fake implementing core.EventService
type mockEventService struct {
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	toggleErr error
}

func (m *mockEventService) ListEvents(userID string) ([]core.ProjectedEvent, error) {
	return nil, m.listErr
}

func (m *mockEventService) CreateEvent(name, date, ownerUserID string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	return "ev-1", nil
}

func (m *mockEventService) UpdateEvent(id, name, date string) error {
	return m.updateErr
}

func (m *mockEventService) DeleteEvent(id string) error {
	return m.deleteErr
}

func (m *mockEventService) ToggleFavorite(eventID, userID string) (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	return true, nil
}

// Requirement: every handler factory returns a non-nil fiber handler.
func TestHandlerFactories(t *testing.T) {
	auth := &mockAuthProvider{}
	events := &mockEventService{}

	if handleSignUp(auth) == nil {
		t.Error("handleSignUp returned nil handler")
	}
	if handleSignIn(auth) == nil {
		t.Error("handleSignIn returned nil handler")
	}
	if handleSignOut(auth) == nil {
		t.Error("handleSignOut returned nil handler")
	}
	if handleGetSession(auth) == nil {
		t.Error("handleGetSession returned nil handler")
	}
	if handleListEvents(events) == nil {
		t.Error("handleListEvents returned nil handler")
	}
	if handleCreateEvent(events) == nil {
		t.Error("handleCreateEvent returned nil handler")
	}
	if handleUpdateEvent(events) == nil {
		t.Error("handleUpdateEvent returned nil handler")
	}
	if handleDeleteEvent(events) == nil {
		t.Error("handleDeleteEvent returned nil handler")
	}
	if handleToggleFavorite(events) == nil {
		t.Error("handleToggleFavorite returned nil handler")
	}
}

// Requirement: mapErrorToStatus maps service errors to correct HTTP status codes
func TestMapErrorToStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "maps ErrInvalidCredentials to 401",
			err:        core.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "maps ErrInvalidToken to 401",
			err:        core.ErrInvalidToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "maps ErrSessionExpired to 401",
			err:        core.ErrSessionExpired,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "maps ErrNoActiveSession to 401",
			err:        core.ErrNoActiveSession,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "maps ErrEmailRequired to 400",
			err:        core.ErrEmailRequired,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "maps ErrEventNameRequired to 400",
			err:        core.ErrEventNameRequired,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "maps ErrEventDateRequired to 400",
			err:        core.ErrEventDateRequired,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "maps ErrInvalidEventDate to 400",
			err:        core.ErrInvalidEventDate,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "maps ErrEventNotFound to 404",
			err:        core.ErrEventNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "maps ErrUserNotFound to 404",
			err:        core.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "maps ErrUserExists to 409",
			err:        core.ErrUserExists,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "maps wrapped errors through errors.Is",
			err:        errors.Join(errors.New("context"), core.ErrInvalidEventDate),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "defaults unknown errors to 500",
			err:        errors.New("unknown error"),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "nil error is 200",
			err:        nil,
			wantStatus: http.StatusOK,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			status := mapErrorToStatus(test.err)

			// Assert
			if status != test.wantStatus {
				t.Errorf("mapErrorToStatus should map error to %d; got %d", test.wantStatus, status)
			}
		})
	}
}

// Package tipon is an event-organizer synchronization core: it tracks the
// authenticated session, mirrors the shared events collection and the user's
// favorite marks through live subscriptions, joins both into a single
// projected list, and funnels every write through one mutation gateway.
package tipon

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/tipon/core"
	"github.com/lborres/tipon/pkg/cache"
	"github.com/lborres/tipon/pkg/crypto"
	"github.com/lborres/tipon/services"
)

// interfaces
type (
	AuthStorage   = core.AuthStorage
	DocumentStore = core.DocumentStore
	Cache         = core.Cache

	HTTPProvider     = core.HTTPProvider
	AuthProvider     = core.AuthProvider
	IdentityProvider = core.IdentityProvider
	EventService     = core.EventService

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Config        = core.Config
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
)

type (
	User        = core.User
	Account     = core.Account
	Session     = core.Session
	SessionData = core.SessionData
	CacheStats  = core.CacheStats

	Document       = core.Document
	Event          = core.Event
	FavoriteMark   = core.FavoriteMark
	ProjectedEvent = core.ProjectedEvent

	SignUpInput  = core.SignUpInput
	SignUpResult = core.SignUpResult
	SignInInput  = core.SignInInput
	SignInResult = core.SignInResult
)

type (
	Unsubscribe       = core.Unsubscribe
	SessionChangeFunc = core.SessionChangeFunc
)

const (
	defaultBasePath  = "/api"
	defaultSecretLen = 32
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = cache.NewInMemoryCache
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
	ValidateEventDate    = services.ValidateEventDate
	Project              = services.Project
)

var (
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrSessionNotFound   = core.ErrSessionNotFound
	ErrSessionExpired    = core.ErrSessionExpired
	ErrCacheNotFound     = core.ErrCacheNotFound
)

var (
	ErrEmailRequired    = core.ErrEmailRequired
	ErrPasswordRequired = core.ErrPasswordRequired
	ErrPasswordTooShort = core.ErrPasswordTooShort
	ErrPasswordTooLong  = core.ErrPasswordTooLong
	ErrInvalidEmail     = core.ErrInvalidEmail
)

var (
	ErrEventNameRequired = core.ErrEventNameRequired
	ErrEventDateRequired = core.ErrEventDateRequired
	ErrInvalidEventDate  = core.ErrInvalidEventDate
	ErrNoActiveSession   = core.ErrNoActiveSession
	ErrEventNotFound     = core.ErrEventNotFound
	ErrDocumentNotFound  = core.ErrDocumentNotFound
)

var (
	ErrStoreRequired     = core.ErrStoreRequired
	ErrDBAdapterRequired = core.ErrDBAdapterRequired
	ErrSecretRequired    = core.ErrSecretRequired
	ErrSecretTooShort    = core.ErrSecretTooShort
)

var (
	ErrNotImplemented = core.ErrNotImplemented
)

// Tipon wires the credential identity provider, the session lifecycle and
// the mutation gateway around one document store. The convenience methods
// below operate on the session the lifecycle currently holds, which is how
// an embedded (single-user) consumer uses the core; multi-session consumers
// talk to Auth and Gateway directly.
type Tipon struct {
	Auth      *services.AuthService
	Lifecycle *services.Lifecycle
	Gateway   *services.Gateway

	BasePath string
}

func New(config Config) (*Tipon, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.Store == nil {
		return nil, ErrStoreRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = cache.NewInMemoryCache(CacheConfig{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		})
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		sessionConfig = &SessionConfig{
			MaxAge: 24 * time.Hour,
		}
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	sessionManager := services.NewSessionManager(*sessionConfig, config.Database, cacheAdapter)
	auth := services.NewAuthService(config.Database, passwordHasher, sessionManager, logger)
	lifecycle := services.NewLifecycle(config.Store, auth, logger)
	gateway := services.NewGateway(config.Store, logger)

	t := &Tipon{
		Auth:      auth,
		Lifecycle: lifecycle,
		Gateway:   gateway,
		BasePath:  basePath,
	}

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(auth, gateway, basePath); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// SignUp registers a new user; the lifecycle picks up the resulting session.
func (t *Tipon) SignUp(input SignUpInput, ipAddress, userAgent string) (*SignUpResult, error) {
	return t.Auth.SignUp(input, ipAddress, userAgent)
}

// SignIn authenticates a user; the lifecycle picks up the resulting session.
func (t *Tipon) SignIn(input SignInInput, ipAddress, userAgent string) (*SignInResult, error) {
	return t.Auth.SignIn(input, ipAddress, userAgent)
}

// SignOut invalidates the session and clears the projection.
func (t *Tipon) SignOut(token string) error {
	return t.Auth.SignOut(token)
}

// UserID returns the active session's user id, or "" when signed out.
func (t *Tipon) UserID() string {
	return t.Lifecycle.UserID()
}

// Projection returns the current projected event list.
func (t *Tipon) Projection() []ProjectedEvent {
	return t.Lifecycle.Projection()
}

// OnProjectionChange registers a listener for projection updates.
func (t *Tipon) OnProjectionChange(fn func([]ProjectedEvent)) Unsubscribe {
	return t.Lifecycle.OnProjectionChange(fn)
}

// CreateEvent writes a new event owned by the active session and applies it
// optimistically as a pending entry until the mirror confirms it.
func (t *Tipon) CreateEvent(name, date string) (string, error) {
	userID := t.Lifecycle.UserID()
	id, err := t.Gateway.CreateEvent(name, date, userID)
	if err != nil {
		return "", err
	}

	t.Lifecycle.AddPending(Event{ID: id, Name: name, Date: date, OwnerID: userID})
	return id, nil
}

// UpdateEvent rewrites an event's name and date.
func (t *Tipon) UpdateEvent(id, name, date string) error {
	if t.Lifecycle.UserID() == "" {
		return ErrNoActiveSession
	}
	return t.Gateway.UpdateEvent(id, name, date)
}

// DeleteEvent removes an event; deleting an absent id is a success.
func (t *Tipon) DeleteEvent(id string) error {
	if t.Lifecycle.UserID() == "" {
		return ErrNoActiveSession
	}
	return t.Gateway.DeleteEvent(id)
}

// ToggleFavorite flips the active user's favorite mark on an event and
// reports the new state.
func (t *Tipon) ToggleFavorite(eventID string) (bool, error) {
	return t.Gateway.ToggleFavorite(eventID, t.Lifecycle.UserID())
}

// Close tears down the lifecycle and its subscriptions.
func (t *Tipon) Close() {
	t.Lifecycle.Close()
}

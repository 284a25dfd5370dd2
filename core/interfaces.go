package core

import (
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// IDENTITY PORT
// ============================================

// SessionChangeFunc receives the user id of the newly active session, or ""
// when the session ended.
type SessionChangeFunc func(userID string)

// AuthProvider provides authentication operations for HTTP adapters
type AuthProvider interface {
	SignUp(input SignUpInput, ipAddress, userAgent string) (*SignUpResult, error)
	SignIn(input SignInInput, ipAddress, userAgent string) (*SignInResult, error)
	SignOut(token string) error
	GetSession(token string) (*SessionData, error)
}

// IdentityProvider is the identity boundary the synchronization core consumes:
// authentication operations plus change notifications that drive the session
// lifecycle.
type IdentityProvider interface {
	AuthProvider

	// OnSessionChange registers a listener for session transitions. The
	// returned Unsubscribe stops further notifications.
	OnSessionChange(fn SessionChangeFunc) Unsubscribe
}

// ============================================
// EVENT PORT (for HTTP adapters)
// ============================================

// EventService exposes the mutation gateway plus a projection read to
// HTTP adapters.
type EventService interface {
	ListEvents(userID string) ([]ProjectedEvent, error)
	CreateEvent(name, date, ownerUserID string) (string, error)
	UpdateEvent(id, name, date string) error
	DeleteEvent(id string) error
	ToggleFavorite(eventID, userID string) (bool, error)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPProvider interface {
	RegisterRoutes(auth AuthProvider, events EventService, basePath string) error
}

package core

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/tipon/pkg/crypto"
)

type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

type Config struct {
	Secret string

	// Database stores users, accounts and sessions for the credential
	// identity provider.
	Database AuthStorage

	// Store is the document database holding events and favorite marks.
	Store DocumentStore

	// Optional config
	HTTP           HTTPProvider
	CacheAdapter   Cache
	DisableCache   bool
	SessionConfig  *SessionConfig
	PasswordHasher crypto.PasswordHandler
	Logger         *zerolog.Logger
	BasePath       string
}

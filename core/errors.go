package core

import "errors"

// Authentication Related Errors
var (
	// User errors
	ErrUserExists         = errors.New("user already exists")       // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")            // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrSessionNotFound   = errors.New("session not found")            // 401
	ErrSessionExpired    = errors.New("session expired")              // 401
	ErrCacheNotFound     = errors.New("session not found in cache")
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email is required")    // 400
	ErrPasswordRequired = errors.New("password is required") // 400
	ErrPasswordTooShort = errors.New("password is too short") // 400
	ErrPasswordTooLong  = errors.New("password is too long")  // 400
	ErrInvalidEmail     = errors.New("invalid email format")  // 400
)

// Event validation errors (client input, checked before any write)
var (
	ErrEventNameRequired = errors.New("event name is required")                    // 400
	ErrEventDateRequired = errors.New("event date is required")                    // 400
	ErrInvalidEventDate  = errors.New("event date must be a valid YYYY-MM-DD date") // 400
)

// Gateway errors
var (
	ErrNoActiveSession = errors.New("no active session")      // 401
	ErrEventNotFound   = errors.New("event not found")        // 404
	ErrDocumentNotFound = errors.New("document not found")    // 404
)

// Config errors (server-side configuration)
var (
	ErrStoreRequired     = errors.New("document store adapter is required") // 500
	ErrDBAdapterRequired = errors.New("database adapter is required")       // 500
	ErrSecretRequired    = errors.New("secret is required")                 // 500
	ErrSecretTooShort    = errors.New("secret too short")                   // 500
)

var (
	ErrNotImplemented = errors.New("not implemented") // 501
)

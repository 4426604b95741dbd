package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Token lifecycle errors
	ErrAuthExpired         = fmt.Errorf("provider authorization expired")
	ErrProviderUnavailable = fmt.Errorf("provider unavailable")
	ErrNotConfigured       = fmt.Errorf("provider client credentials not configured")
	ErrMalformedResponse   = fmt.Errorf("malformed upstream response")
	ErrNotLinked           = fmt.Errorf("provider account not linked")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidState     = fmt.Errorf("invalid oauth state")

	// Persistence errors
	ErrNotFound      = fmt.Errorf("record not found")
	ErrAlreadyExists = fmt.Errorf("record already exists")
	ErrAlreadyLinked = fmt.Errorf("provider account already linked to another user")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

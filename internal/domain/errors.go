package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflict")
	ErrCodeExpired        = errors.New("verification code expired or not verified")
	ErrUnknownStrategy    = errors.New("unknown authentication strategy")
	ErrUnknownScene       = errors.New("unknown verification scene")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInfrastructure     = errors.New("infrastructure unavailable")
)

// Package common defines shared constants and sentinel errors used across
// RecipeBox components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Backend/auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSession    = errors.New("no active session")

	// Service-level errors.
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation error")
)

// Package apperr defines the sentinel errors shared across metron packages.
// Callers wrap them with context and transports map them with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// Conversion lookups.
	ErrUnrecognizedCategory = errors.New("unrecognized category")
	ErrUnrecognizedUnit     = errors.New("unrecognized unit")

	// Accounts and sessions.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

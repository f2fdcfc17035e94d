package domain

import "errors"

// Sentinel errors shared across repositories and services. Controllers map
// these to stable API error codes; anything else is treated as internal.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

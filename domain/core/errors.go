package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Input errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidDomain = fmt.Errorf("%w: unknown operation domain", ErrInvalidInput)
	ErrInvalidShape  = fmt.Errorf("%w: unknown chart shape", ErrInvalidInput)
	ErrInvalidLevel  = fmt.Errorf("%w: workforce level out of range", ErrInvalidInput)
	ErrInvalidMetric = fmt.Errorf("%w: metric column is not numeric", ErrInvalidInput)

	// Import errors
	ErrParse          = errors.New("parse error")
	ErrUnsupportedFmt = fmt.Errorf("%w: unsupported file format", ErrParse)
	ErrNoData         = fmt.Errorf("%w: no valid data found in file", ErrParse)

	// Storage errors
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewParseError(format string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrParse, format, reason)
}

func NewQuotaError(used, limit int) error {
	return fmt.Errorf("%w: %d bytes requested, limit %d", ErrQuotaExceeded, used, limit)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsQuotaError(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

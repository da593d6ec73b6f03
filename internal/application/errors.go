package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrModelLoad      = errors.New("failed to load model")
	ErrNoLookup       = errors.New("no density lookup configured")
	ErrInvalidDensity = errors.New("invalid density response")
	ErrCacheSave      = errors.New("failed to save density cache")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LookupError represents a failed external density lookup
type LookupError struct {
	Material string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("density lookup for %q failed: %v", e.Material, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ModelLoadError represents a model that could not be opened or parsed
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("cannot load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Is(target error) bool {
	return target == ErrModelLoad
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

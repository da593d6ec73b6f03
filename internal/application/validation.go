package application

import (
	"fmt"
	"math"
	"strings"
)

// fieldLabels are the human names of command fields in error messages
var fieldLabels = map[string]string{
	"modelPath": "model path",
	"runs":      "number of runs",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateRequired rejects empty or whitespace-only values
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "%s is required", fieldLabel(field))
	}
	return nil
}

// ValidateDensity checks that a density is usable as a cache entry.
// Zero is allowed: it marks a material as invalid.
func ValidateDensity(density int) error {
	if density < 0 {
		return invalid("density", "density must not be negative, got: %d", density)
	}
	return nil
}

// ValidateTemperature checks the determinism parameter of a lookup
func ValidateTemperature(temperature float64) error {
	if math.IsNaN(temperature) || temperature < 0 || temperature > 2 {
		return invalid("temperature", "temperature must be between 0 and 2, got: %g", temperature)
	}
	return nil
}

// ValidateRuns checks the iteration count of a repeated calculation
func ValidateRuns(runs int) error {
	if runs < 1 {
		return invalid("runs", "%s must be at least 1, got: %d", fieldLabel("runs"), runs)
	}
	return nil
}

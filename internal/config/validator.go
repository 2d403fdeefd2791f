package config

import (
	"fmt"
	"slices"
	"strings"

	"batchOptimize/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config key (e.g., "max_dimension")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidColorModes returns the accepted values of the color setting.
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

const (
	minQuality = 0
	maxQuality = 100
)

// Validate checks c for invalid values and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.InputDir == "" {
		errors = append(errors, ValidationError{
			Field:   "input_dir",
			Value:   c.InputDir,
			Message: "must not be empty",
		})
	}
	if c.OutputDir == "" {
		errors = append(errors, ValidationError{
			Field:   "output_dir",
			Value:   c.OutputDir,
			Message: "must not be empty",
		})
	}

	if c.Quality < minQuality || c.Quality > maxQuality {
		errors = append(errors, ValidationError{
			Field:   "quality",
			Value:   c.Quality,
			Message: fmt.Sprintf("must be between %d and %d", minQuality, maxQuality),
		})
	}

	if c.MaxDimension < 1 {
		errors = append(errors, ValidationError{
			Field:   "max_dimension",
			Value:   c.MaxDimension,
			Message: "must be at least 1",
		})
	}

	if c.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "workers",
			Value:   c.Workers,
			Message: "must be non-negative (0 means auto)",
		})
	}

	if !slices.Contains(ValidColorModes(), strings.ToLower(c.Color)) {
		errors = append(errors, ValidationError{
			Field:   "color",
			Value:   c.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	if !logging.ValidLevel(c.LogLevel) {
		errors = append(errors, ValidationError{
			Field:   "log_level",
			Value:   c.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	return errors
}

package models

import (
	"errors"
	"fmt"
)

// ConfigurationError reports malformed inputs or missing lookup keys.
// It aborts the computation for a single region; sibling regions proceed.
type ConfigurationError struct {
	Field  string // e.g. "core_lut", "strategy", "networks"
	Key    string // offending key or value
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("configuration error in %s (%s): %s", e.Field, e.Key, e.Reason)
}

// UnsupportedVariantError reports a domain value the engine does not model,
// such as an unknown backhaul technology or asset cost kind.
type UnsupportedVariantError struct {
	Kind  string // e.g. "backhaul", "asset_kind", "generation"
	Value string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("unsupported %s variant %q", e.Kind, e.Value)
}

// NewConfigError is a shorthand used by the loaders and calculators.
func NewConfigError(field, key, reason string) error {
	return &ConfigurationError{Field: field, Key: key, Reason: reason}
}

// NewUnsupported is a shorthand for UnsupportedVariantError.
func NewUnsupported(kind, value string) error {
	return &UnsupportedVariantError{Kind: kind, Value: value}
}

// ErrorKind classifies an error for logs and metrics labels.
func ErrorKind(err error) string {
	var cfgErr *ConfigurationError
	var unsupported *UnsupportedVariantError
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &unsupported):
		return "unsupported_variant"
	default:
		return "internal"
	}
}

// IsRecoverable reports whether a region-level error may be skipped while
// the rest of the batch continues.
func IsRecoverable(err error) bool {
	kind := ErrorKind(err)
	return kind == "configuration" || kind == "unsupported_variant"
}

package core

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error. Invalid
// configuration is fatal: it is reported before a run takes its first step.
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError describes a rejected configuration field.
type ConfigError struct {
	Scope  string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s config %s: %s", e.Scope, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

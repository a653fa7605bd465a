package services

import (
	"errors"
	"fmt"

	"github.com/ochairo/iosystem/internal/domain/entities"
)

var (
	// ErrMissingChecksum is wrapped by ConfigurationError when a remote
	// component has no registry entry
	ErrMissingChecksum = errors.New("missing checksum")

	// ErrUnknownComponent is returned for names outside the manifest target list
	ErrUnknownComponent = errors.New("unknown component")
)

// ConfigurationError reports a manifest that cannot be evaluated.
// It aborts resolution and no partial result is produced.
type ConfigurationError struct {
	Component entities.ComponentName
	Key       string
	Err       error
}

// Error names the component and the registry key that could not be resolved
func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("configuration error: component %q: %v (registry key %q)", e.Component, e.Err, e.Key)
}

// Unwrap returns the underlying cause, e.g. ErrMissingChecksum
func (e *ConfigurationError) Unwrap() error { return e.Err }

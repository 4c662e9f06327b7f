package model

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable marks transport-level failures against the model
// backend (connection refused, timeout, unexpected status). Wrapped so
// callers can report the unavailable dependency without parsing messages.
var ErrBackendUnavailable = errors.New("model backend unavailable")

// ModelNotFoundError is returned when the remote backend reports that the
// configured model is not installed, as opposed to the service being down.
type ModelNotFoundError struct {
	Model string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q is not available on the backend (pull it first: ollama pull %s)", e.Model, e.Model)
}

// IsModelNotFound reports whether err carries a ModelNotFoundError.
func IsModelNotFound(err error) bool {
	var mnf *ModelNotFoundError
	return errors.As(err, &mnf)
}

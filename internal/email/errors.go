package email

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned before any network activity when a
// transport is missing required settings.
type ConfigurationError struct {
	Transport string
	Missing   []string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s transport is not configured: missing %s", e.Transport, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s transport is not configured: %s", e.Transport, e.Reason)
}

// TransportError wraps a failure reported by the underlying mail library.
// Its message is the library's message unchanged; Op names the step that
// failed and is only used for logging.
type TransportError struct {
	Transport string
	Op        string
	Err       error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// internal/errors/errors.go
package errors

import "fmt"

// GenericMessage is the only failure text ever shown to the user. Network and
// status failures are deliberately indistinguishable on screen.
const GenericMessage = "Network response was not ok"

// ErrNetwork is returned when no usable response was obtained from the profile
// API (DNS failure, refused connection, timeout, unreadable body).
type ErrNetwork struct {
	Err error
}

func (e *ErrNetwork) Error() string {
	return GenericMessage
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// Cause returns the underlying transport error text for logging.
func (e *ErrNetwork) Cause() string {
	if e.Err == nil {
		return "unknown"
	}
	return e.Err.Error()
}

// ErrHTTPStatus is returned when the profile API answered with a status
// outside the 2xx range.
type ErrHTTPStatus struct {
	StatusCode int
}

func (e *ErrHTTPStatus) Error() string {
	return GenericMessage
}

// Cause returns the status code in a log-friendly form.
func (e *ErrHTTPStatus) Cause() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

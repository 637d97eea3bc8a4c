package unlock

import (
	"errors"
	"fmt"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

var (
	// ErrNotOpen is returned when the device link is not open.
	ErrNotOpen = errors.New("unlock: device not open")
	// ErrResponseTimeout is returned when the device does not answer in time.
	ErrResponseTimeout = errors.New("unlock: response timeout")
	// ErrServerProtocol is matched by every *ServerError.
	ErrServerProtocol = errors.New("unlock: device reported an error")
	// ErrChallenge is returned when the device challenge fails local validation.
	ErrChallenge = errors.New("unlock: invalid challenge")
	// ErrBadProof is returned when the device proof does not match: wrong password or tampering.
	ErrBadProof = errors.New("unlock: device proof mismatch")
	// ErrTransport is returned when a request cannot be sent.
	ErrTransport = errors.New("unlock: transport failure")
	// ErrHandshakeInProgress is returned when Authenticate is called while another attempt is running.
	ErrHandshakeInProgress = errors.New("unlock: handshake already in progress")
)

// ServerError is a failure reported by the device in an error response.
// It unwraps to the *protocol.DeviceError decoded from the response.
type ServerError struct {
	Code        protocol.ErrorCode
	Description string
}

func newServerError(err *protocol.DeviceError) *ServerError {
	return &ServerError{Code: err.Code, Description: err.Description}
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return "unlock: device reported " + e.Unwrap().Error()
}

// Is reports whether target is ErrServerProtocol.
func (e *ServerError) Is(target error) bool {
	return target == ErrServerProtocol
}

// Unwrap returns the device error carried by the response.
func (e *ServerError) Unwrap() error {
	return &protocol.DeviceError{Code: e.Code, Description: e.Description}
}

// AuthenticationError is the single failure outcome of Authenticate.
// State is the handshake state the attempt was in when it failed.
type AuthenticationError struct {
	State State
	Err   error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %v", e.State, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

package protocol

import "fmt"

// ErrorCode is the status byte of an unlock response.
type ErrorCode uint8

// Device status codes.
const (
	// StatusOK marks a successful response.
	StatusOK ErrorCode = 0
	// ErrCodeUnexpectedStep indicates the request step was out of sequence.
	ErrCodeUnexpectedStep ErrorCode = 1
	// ErrCodeMalformed indicates the request payload could not be parsed.
	ErrCodeMalformed ErrorCode = 2
	// ErrCodeAuthFailed indicates the client proof did not match.
	ErrCodeAuthFailed ErrorCode = 3
	// ErrCodeLocked indicates the device refuses unlock attempts after repeated failures.
	ErrCodeLocked ErrorCode = 4
	// ErrCodeBusy indicates another client is unlocking the device.
	ErrCodeBusy ErrorCode = 5
	// ErrCodeInternal indicates a device-side failure.
	ErrCodeInternal ErrorCode = 6
)

var errorCodeNames = map[ErrorCode]string{
	StatusOK:              "OK",
	ErrCodeUnexpectedStep: "UNEXPECTED_STEP",
	ErrCodeMalformed:      "MALFORMED",
	ErrCodeAuthFailed:     "AUTHENTICATION_FAILED",
	ErrCodeLocked:         "LOCKED",
	ErrCodeBusy:           "BUSY",
	ErrCodeInternal:       "INTERNAL_ERROR",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", uint8(c))
}

// DeviceError is an error reported by the device in an unlock response.
type DeviceError struct {
	Code        ErrorCode
	Description string
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code.String()
}

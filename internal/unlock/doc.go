// Package unlock performs the SRP-6a handshake that unlocks a radio device.
//
// An Authenticator drives two request/response round trips over a Device:
// the client ephemeral A is answered by the device's salt and ephemeral B,
// and the client proof M1 is answered by the device proof M2 together with
// the TX and RX nonces. Responses arrive on the device's read goroutine and
// are handed to the blocked caller by a per-attempt correlator.
//
//go:generate go tool mockgen -destination=mock_device.go -package=unlock github.com/fzdarsky/radiounlock/internal/unlock Device
package unlock

package srp

import "errors"

// Errors returned by the SRP client and server.
var (
	// ErrNotStarted is returned when the challenge is processed before StartAuthentication.
	ErrNotStarted = errors.New("srp: authentication not started")

	// ErrInvalidSalt is returned when the salt does not have SaltSize bytes.
	ErrInvalidSalt = errors.New("srp: invalid salt length")

	// ErrInvalidServerEphemeral is returned when B is malformed or B mod N == 0.
	ErrInvalidServerEphemeral = errors.New("srp: invalid server ephemeral")

	// ErrInvalidClientEphemeral is returned when A is malformed or A mod N == 0.
	ErrInvalidClientEphemeral = errors.New("srp: invalid client ephemeral")

	// ErrInvalidScrambler is returned when u = H(A | B) is zero.
	ErrInvalidScrambler = errors.New("srp: scrambling parameter is zero")

	// ErrProofMismatch is returned by the server when the client proof does not verify.
	ErrProofMismatch = errors.New("srp: client proof mismatch")

	// ErrNoChallenge is returned when a proof is verified before a challenge was issued.
	ErrNoChallenge = errors.New("srp: no challenge issued")
)

package unlock

import "fmt"

// State is the position of an unlock attempt in the handshake.
type State int32

// Handshake states. StateFailed can be entered from any other state.
const (
	StateInit State = iota
	StateAwaitChallenge
	StateChallengeComputed
	StateAwaitFinalProof
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAwaitChallenge:
		return "await-challenge"
	case StateChallengeComputed:
		return "challenge-computed"
	case StateAwaitFinalProof:
		return "await-final-proof"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

package protocol

import (
	"errors"
	"fmt"
)

// Step identifies the position of a message within the unlock handshake.
type Step uint8

// Handshake steps. Odd steps travel client to device, even steps device to client.
const (
	// StepNone marks an error response, which carries no step.
	StepNone Step = 0
	// StepClientEphemeral carries the client public ephemeral A.
	StepClientEphemeral Step = 1
	// StepChallenge carries the salt and the device public ephemeral B.
	StepChallenge Step = 2
	// StepClientProof carries the client proof M1.
	StepClientProof Step = 3
	// StepServerProof carries the device proof M2 and the session nonces.
	StepServerProof Step = 4
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepClientEphemeral:
		return "client-ephemeral"
	case StepChallenge:
		return "challenge"
	case StepClientProof:
		return "client-proof"
	case StepServerProof:
		return "server-proof"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// Field sizes of the unlock payloads, in bytes.
const (
	EphemeralSize = 128
	SaltSize      = 4
	ProofSize     = 32
	NonceSize     = 12

	ChallengeSize  = SaltSize + EphemeralSize
	FinalProofSize = ProofSize + 2*NonceSize
)

var (
	// ErrWrongFrameType is returned when a packet of another type is parsed as an unlock frame.
	ErrWrongFrameType = errors.New("protocol: unexpected frame type")
	// ErrMalformed is returned when an unlock frame or payload is truncated.
	ErrMalformed = errors.New("protocol: malformed unlock frame")
)

// UnlockRequest is the body of a FrameUnlockRequest packet: [step][payload].
type UnlockRequest struct {
	Step    Step
	Payload []byte
}

// Packet encodes the request as a link packet.
func (r UnlockRequest) Packet() Packet {
	body := make([]byte, 1+len(r.Payload))
	body[0] = byte(r.Step)
	copy(body[1:], r.Payload)
	return Packet{Type: FrameUnlockRequest, Payload: body}
}

// ParseUnlockRequest decodes a FrameUnlockRequest packet.
func ParseUnlockRequest(pkt Packet) (UnlockRequest, error) {
	if pkt.Type != FrameUnlockRequest {
		return UnlockRequest{}, fmt.Errorf("%w: %s", ErrWrongFrameType, pkt.Type)
	}
	if len(pkt.Payload) < 1 {
		return UnlockRequest{}, fmt.Errorf("%w: empty request", ErrMalformed)
	}
	return UnlockRequest{
		Step:    Step(pkt.Payload[0]),
		Payload: pkt.Payload[1:],
	}, nil
}

// UnlockResponse is the body of a FrameUnlockResponse packet: [step][status][payload].
// A non-zero Status marks a device-reported error; Step is then StepNone and
// Payload holds a UTF-8 description.
type UnlockResponse struct {
	Step    Step
	Status  ErrorCode
	Payload []byte
}

// Packet encodes the response as a link packet.
func (r UnlockResponse) Packet() Packet {
	body := make([]byte, 2+len(r.Payload))
	body[0] = byte(r.Step)
	body[1] = byte(r.Status)
	copy(body[2:], r.Payload)
	return Packet{Type: FrameUnlockResponse, Payload: body}
}

// Err returns the device-reported error carried by the response, or nil.
func (r UnlockResponse) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	return &DeviceError{Code: r.Status, Description: string(r.Payload)}
}

// ParseUnlockResponse decodes a FrameUnlockResponse packet.
func ParseUnlockResponse(pkt Packet) (UnlockResponse, error) {
	if pkt.Type != FrameUnlockResponse {
		return UnlockResponse{}, fmt.Errorf("%w: %s", ErrWrongFrameType, pkt.Type)
	}
	if len(pkt.Payload) < 2 {
		return UnlockResponse{}, fmt.Errorf("%w: response of %d bytes", ErrMalformed, len(pkt.Payload))
	}
	return UnlockResponse{
		Step:    Step(pkt.Payload[0]),
		Status:  ErrorCode(pkt.Payload[1]),
		Payload: pkt.Payload[2:],
	}, nil
}

// NewErrorResponse builds an error response for the given code.
func NewErrorResponse(code ErrorCode, description string) UnlockResponse {
	return UnlockResponse{
		Step:    StepNone,
		Status:  code,
		Payload: []byte(description),
	}
}

// Challenge is the payload of a step 2 response.
type Challenge struct {
	Salt            []byte
	ServerEphemeral []byte
}

// ParseChallenge reads the salt and B from their fixed offsets.
func ParseChallenge(payload []byte) (Challenge, error) {
	if len(payload) < ChallengeSize {
		return Challenge{}, fmt.Errorf("%w: challenge of %d bytes, want %d", ErrMalformed, len(payload), ChallengeSize)
	}
	return Challenge{
		Salt:            clone(payload[:SaltSize]),
		ServerEphemeral: clone(payload[SaltSize:ChallengeSize]),
	}, nil
}

// Marshal encodes the challenge payload.
func (c Challenge) Marshal() []byte {
	out := make([]byte, 0, ChallengeSize)
	out = append(out, c.Salt...)
	return append(out, c.ServerEphemeral...)
}

// FinalProof is the payload of a step 4 response. Nonce direction is given
// from the client's point of view.
type FinalProof struct {
	ServerProof []byte
	TxNonce     []byte
	RxNonce     []byte
}

// ParseFinalProof reads M2 and both nonces from their fixed offsets.
func ParseFinalProof(payload []byte) (FinalProof, error) {
	if len(payload) < FinalProofSize {
		return FinalProof{}, fmt.Errorf("%w: final proof of %d bytes, want %d", ErrMalformed, len(payload), FinalProofSize)
	}
	return FinalProof{
		ServerProof: clone(payload[:ProofSize]),
		TxNonce:     clone(payload[ProofSize : ProofSize+NonceSize]),
		RxNonce:     clone(payload[ProofSize+NonceSize : FinalProofSize]),
	}, nil
}

// Marshal encodes the final proof payload.
func (f FinalProof) Marshal() []byte {
	out := make([]byte, 0, FinalProofSize)
	out = append(out, f.ServerProof...)
	out = append(out, f.TxNonce...)
	return append(out, f.RxNonce...)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

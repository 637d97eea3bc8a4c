// Package devicesim simulates the device side of the radio unlock handshake.
//
// A Device answers unlock requests arriving on a link with the SRP-6a
// server role, hands out session nonces on success and enforces a lockout
// after repeated bad proofs. It is used by the radiosim binary and by
// end-to-end tests.
package devicesim

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
	"github.com/fzdarsky/radiounlock/pkg/srp"
)

// Sender transmits packets to the connected client.
type Sender interface {
	Send(pkt protocol.Packet) error
}

// Session is the material a successful unlock establishes. Nonce direction
// is given from the client's point of view.
type Session struct {
	Key     []byte
	TxNonce []byte
	RxNonce []byte
}

// Config configures a simulated device.
type Config struct {
	// Credentials holds the salt and verifier. Required.
	Credentials *Credentials

	// MaxFailures and LockoutDuration configure the lockout.
	// Zero values select DefaultMaxFailures and DefaultLockoutDuration.
	MaxFailures     int
	LockoutDuration time.Duration

	// Rand supplies the server ephemeral and the nonces. Defaults to crypto/rand.
	Rand io.Reader

	// OnUnlock is called after each successful handshake.
	OnUnlock func(Session)

	// LoggerFactory creates the simulator logger.
	// If nil, the pion default logger factory is used.
	LoggerFactory logging.LoggerFactory
}

// Device is one simulated radio bound to one client connection.
type Device struct {
	sender   Sender
	salt     []byte
	verifier *big.Int
	lockout  *Lockout
	rand     io.Reader
	onUnlock func(Session)
	log      logging.LeveledLogger

	mu      sync.Mutex
	server  *srp.Server // In-progress handshake, nil when idle
	session *Session
}

// New creates a simulated device replying on sender.
func New(sender Sender, config Config) (*Device, error) {
	return newDevice(sender, config, NewLockout(config.MaxFailures, config.LockoutDuration))
}

func newDevice(sender Sender, config Config, lockout *Lockout) (*Device, error) {
	if config.Credentials == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	salt, verifier, err := config.Credentials.Decode()
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	random := config.Rand
	if random == nil {
		random = rand.Reader
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	return &Device{
		sender:   sender,
		salt:     salt,
		verifier: verifier,
		lockout:  lockout,
		rand:     random,
		onUnlock: config.OnUnlock,
		log:      loggerFactory.NewLogger("devicesim"),
	}, nil
}

// Session returns the material of the most recent successful unlock, or nil.
func (d *Device) Session() *Session {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil
	}
	s := *d.session
	return &s
}

// HandlePacket implements protocol.Listener.
func (d *Device) HandlePacket(pkt protocol.Packet) {
	if pkt.Type != protocol.FrameUnlockRequest {
		return
	}

	var reply protocol.UnlockResponse
	req, err := protocol.ParseUnlockRequest(pkt)
	if err != nil {
		reply = protocol.NewErrorResponse(protocol.ErrCodeMalformed, err.Error())
	} else {
		reply = d.handleRequest(req)
	}

	if err := d.sender.Send(reply.Packet()); err != nil {
		d.log.Errorf("failed to send %s response: %v", reply.Step, err)
	}
}

func (d *Device) handleRequest(req protocol.UnlockRequest) protocol.UnlockResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch req.Step {
	case protocol.StepClientEphemeral:
		return d.handleClientEphemeral(req.Payload)
	case protocol.StepClientProof:
		return d.handleClientProof(req.Payload)
	default:
		d.log.Debugf("rejecting unexpected %s request", req.Step)
		return protocol.NewErrorResponse(protocol.ErrCodeUnexpectedStep, fmt.Sprintf("unexpected %s request", req.Step))
	}
}

func (d *Device) handleClientEphemeral(A []byte) protocol.UnlockResponse {
	d.server = nil

	if locked, retryAfter := d.lockout.Check(); locked {
		d.log.Infof("unlock refused: locked for %ds", FormatRetryAfter(retryAfter))
		return protocol.NewErrorResponse(protocol.ErrCodeLocked, fmt.Sprintf("retry in %ds", FormatRetryAfter(retryAfter)))
	}

	if len(A) != protocol.EphemeralSize {
		return protocol.NewErrorResponse(protocol.ErrCodeMalformed, fmt.Sprintf("client ephemeral of %d bytes", len(A)))
	}

	server := srp.NewServer(d.salt, d.verifier)
	server.SetRandom(d.rand)

	B, err := server.Challenge(A)
	if err != nil {
		d.log.Warnf("rejecting client ephemeral: %v", err)
		return protocol.NewErrorResponse(protocol.ErrCodeMalformed, err.Error())
	}

	d.server = server
	d.log.Debug("sent challenge")

	payload := protocol.Challenge{Salt: d.salt, ServerEphemeral: B}.Marshal()
	return protocol.UnlockResponse{Step: protocol.StepChallenge, Payload: payload}
}

//nolint:gocritic // M1 is capitalized per RFC 5054 notation
func (d *Device) handleClientProof(M1 []byte) protocol.UnlockResponse {
	server := d.server
	if server == nil {
		return protocol.NewErrorResponse(protocol.ErrCodeUnexpectedStep, "no challenge outstanding")
	}
	d.server = nil
	defer server.ClearSecrets()

	if len(M1) != protocol.ProofSize {
		return protocol.NewErrorResponse(protocol.ErrCodeMalformed, fmt.Sprintf("client proof of %d bytes", len(M1)))
	}

	M2, err := server.VerifyClient(M1)
	if err != nil {
		if d.lockout.RecordFailure() {
			d.log.Warnf("locking out after %d failed attempts", d.lockout.Failures())
		}
		return protocol.NewErrorResponse(protocol.ErrCodeAuthFailed, "client proof mismatch")
	}

	session := &Session{
		Key:     server.SessionKey(),
		TxNonce: make([]byte, protocol.NonceSize),
		RxNonce: make([]byte, protocol.NonceSize),
	}
	if _, err := io.ReadFull(d.rand, session.TxNonce); err != nil {
		return protocol.NewErrorResponse(protocol.ErrCodeInternal, "nonce generation failed")
	}
	if _, err := io.ReadFull(d.rand, session.RxNonce); err != nil {
		return protocol.NewErrorResponse(protocol.ErrCodeInternal, "nonce generation failed")
	}

	d.lockout.RecordSuccess()
	d.session = session
	d.log.Info("client unlocked")

	if d.onUnlock != nil {
		d.onUnlock(*session)
	}

	payload := protocol.FinalProof{ServerProof: M2, TxNonce: session.TxNonce, RxNonce: session.RxNonce}.Marshal()
	return protocol.UnlockResponse{Step: protocol.StepServerProof, Payload: payload}
}

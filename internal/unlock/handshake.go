package unlock

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/pion/logging"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
	"github.com/fzdarsky/radiounlock/pkg/srp"
)

// DefaultResponseTimeout bounds each wait for a device response.
const DefaultResponseTimeout = 4000 * time.Millisecond

// Config configures an Authenticator.
type Config struct {
	// Password is the device password. It never leaves the process.
	Password string

	// ResponseTimeout bounds each of the two waits for a device response.
	// Defaults to DefaultResponseTimeout if 0.
	ResponseTimeout time.Duration

	// Rand is the source of the client ephemeral. Defaults to crypto/rand.
	Rand io.Reader

	// LoggerFactory creates the unlock logger.
	// If nil, the pion default logger factory is used.
	LoggerFactory logging.LoggerFactory
}

// sessionMaterial is published as a whole once the device proof is verified.
type sessionMaterial struct {
	key     []byte
	txNonce []byte
	rxNonce []byte
}

// Authenticator unlocks one device. Authenticate may be called again after
// a failure; each call runs a new SRP session with a fresh ephemeral key.
type Authenticator struct {
	device   Device
	password string
	timeout  time.Duration
	rand     io.Reader
	log      logging.LeveledLogger

	inFlight atomic.Bool
	state    atomic.Int32
	session  atomic.Pointer[sessionMaterial]
}

// New creates an Authenticator for device.
func New(device Device, config Config) *Authenticator {
	timeout := config.ResponseTimeout
	if timeout == 0 {
		timeout = DefaultResponseTimeout
	}

	random := config.Rand
	if random == nil {
		random = rand.Reader
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	return &Authenticator{
		device:   device,
		password: config.Password,
		timeout:  timeout,
		rand:     random,
		log:      loggerFactory.NewLogger("unlock"),
	}
}

// Authenticate runs the full handshake and blocks until it succeeds or fails.
// Every failure is an *AuthenticationError wrapping one of the package's
// sentinel errors. A concurrent call fails with ErrHandshakeInProgress
// without affecting the attempt already running.
func (a *Authenticator) Authenticate() error {
	if !a.inFlight.CompareAndSwap(false, true) {
		return &AuthenticationError{State: a.State(), Err: ErrHandshakeInProgress}
	}
	defer a.inFlight.Store(false)

	a.session.Store(nil)
	a.setState(StateInit)

	client := srp.NewClient(a.password)
	client.SetRandom(a.rand)
	defer client.ClearSecrets()

	at := &attempt{
		Authenticator: a,
		client:        client,
		corr:          newCorrelator(a.log),
	}

	session, err := at.run()
	if err != nil {
		failedIn := a.State()
		a.setState(StateFailed)
		a.log.Warnf("unlock failed in state %s: %v", failedIn, err)
		return &AuthenticationError{State: failedIn, Err: err}
	}

	a.session.Store(session)
	a.setState(StateComplete)
	a.log.Info("device unlocked")
	return nil
}

// State returns the state of the current or most recent attempt.
func (a *Authenticator) State() State {
	return State(a.state.Load())
}

// SessionKey returns a copy of the derived session key, or nil unless the
// most recent attempt succeeded.
func (a *Authenticator) SessionKey() []byte {
	if s := a.session.Load(); s != nil {
		return clone(s.key)
	}
	return nil
}

// TxNonce returns a copy of the nonce for client-to-device traffic, or nil.
func (a *Authenticator) TxNonce() []byte {
	if s := a.session.Load(); s != nil {
		return clone(s.txNonce)
	}
	return nil
}

// RxNonce returns a copy of the nonce for device-to-client traffic, or nil.
func (a *Authenticator) RxNonce() []byte {
	if s := a.session.Load(); s != nil {
		return clone(s.rxNonce)
	}
	return nil
}

func (a *Authenticator) setState(s State) {
	a.state.Store(int32(s))
}

// attempt holds the state of a single Authenticate call.
type attempt struct {
	*Authenticator
	client *srp.Client
	corr   *correlator
}

func (at *attempt) run() (*sessionMaterial, error) {
	if !at.device.IsOpen() {
		return nil, ErrNotOpen
	}

	// Register before the first send so that a fast reply is not lost.
	at.device.AddListener(at.corr)
	defer at.device.RemoveListener(at.corr)

	A, err := at.client.StartAuthentication()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChallenge, err)
	}

	resp, err := at.roundTrip(protocol.StepClientEphemeral, A, protocol.StepChallenge, StateAwaitChallenge)
	if err != nil {
		return nil, err
	}

	challenge, err := protocol.ParseChallenge(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChallenge, err)
	}

	M1, err := at.client.ProcessChallenge(challenge.Salt, challenge.ServerEphemeral)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChallenge, err)
	}
	at.setState(StateChallengeComputed)

	resp, err = at.roundTrip(protocol.StepClientProof, M1, protocol.StepServerProof, StateAwaitFinalProof)
	if err != nil {
		return nil, err
	}

	proof, err := protocol.ParseFinalProof(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadProof, err)
	}

	at.client.VerifySession(proof.ServerProof)
	if !at.client.Authenticated() {
		return nil, ErrBadProof
	}

	return &sessionMaterial{
		key:     at.client.SessionKey(),
		txNonce: proof.TxNonce,
		rxNonce: proof.RxNonce,
	}, nil
}

// roundTrip sends one request and waits for the response to the given step.
// The attempt enters the awaiting state only once the request is on the wire.
func (at *attempt) roundTrip(step protocol.Step, payload []byte, want protocol.Step, awaiting State) (protocol.UnlockResponse, error) {
	at.corr.expect(want)

	req := protocol.UnlockRequest{Step: step, Payload: payload}
	if err := at.device.Send(req.Packet()); err != nil {
		return protocol.UnlockResponse{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	at.setState(awaiting)
	at.log.Debugf("sent %s request, awaiting %s", step, want)

	resp, ok := at.corr.wait(at.timeout)
	if !ok {
		return protocol.UnlockResponse{}, fmt.Errorf("%w: no %s response within %s", ErrResponseTimeout, want, at.timeout)
	}
	var devErr *protocol.DeviceError
	if errors.As(resp.Err(), &devErr) {
		return protocol.UnlockResponse{}, newServerError(devErr)
	}

	return resp, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

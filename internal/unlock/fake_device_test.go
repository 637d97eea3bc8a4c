package unlock_test

import (
	"bytes"
	"encoding/hex"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
	"github.com/fzdarsky/radiounlock/pkg/srp"
)

const (
	testPassword = "test1234"

	rfcPrivateA = "60975527035cf2ad1989806f0407210bc81edc04e2762a56afd529ddda2d4393"
	rfcPrivateB = "e487cb59d31ac550471e81f00f6928e01dda08e974a004f49e61f5d105284d20"

	rfcPublicA = "61d5e490f6f1b79547b0704c436f523dd0e560f0c64115bb72557ec44352e890" +
		"3211c04692272d8b2d1a5358a2cf1b6e0bfcf99f921530ec8e39356179eae45e" +
		"42ba92aeaced825171e1e8b9af6d9c03e1327f44be087ef06530e69f66615261" +
		"eef54073ca11cf5858f0edfdfe15efeab349ef5d76988a3672fac47b0769447b"

	goldenK  = "00a9aa62f94cf141ca1b72f6b684a61598527e3762cb326f99e5a4fd9fb4ecd4"
	goldenM1 = "912bb580fe2abf8a8761ad4d1e581cb6045b03f9bca3dd31d0ab3c5cf833e0e0"
)

var (
	testSalt = []byte{0x01, 0x02, 0x03, 0x04}
	txNonce  = bytes.Repeat([]byte{0xa1}, protocol.NonceSize)
	rxNonce  = bytes.Repeat([]byte{0xb2}, protocol.NonceSize)
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// responder produces the device replies to one request.
type responder func(req protocol.UnlockRequest) []protocol.Packet

// fakeDevice delivers replies from a separate goroutine, like a link read loop.
type fakeDevice struct {
	mu        sync.Mutex
	open      bool
	listeners []protocol.Listener
	requests  []protocol.UnlockRequest
	respond   responder
	sendErr   error
}

func newFakeDevice(respond responder) *fakeDevice {
	return &fakeDevice{open: true, respond: respond}
}

func (d *fakeDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *fakeDevice) Send(pkt protocol.Packet) error {
	if d.sendErr != nil {
		return d.sendErr
	}

	req, err := protocol.ParseUnlockRequest(pkt)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.requests = append(d.requests, req)
	respond := d.respond
	d.mu.Unlock()

	if respond == nil {
		return nil
	}

	replies := respond(req)
	go func() {
		for _, reply := range replies {
			d.deliver(reply)
		}
	}()
	return nil
}

func (d *fakeDevice) AddListener(l protocol.Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

func (d *fakeDevice) RemoveListener(l protocol.Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := slices.Index(d.listeners, l); i >= 0 {
		d.listeners = slices.Delete(d.listeners, i, i+1)
	}
}

func (d *fakeDevice) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

func (d *fakeDevice) Requests() []protocol.UnlockRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.requests)
}

func (d *fakeDevice) deliver(pkt protocol.Packet) {
	d.mu.Lock()
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()

	for _, l := range listeners {
		l.HandlePacket(pkt)
	}
}

// srpResponder answers like a real radio holding the verifier for password.
// If bRandom is non-nil it supplies the device ephemeral.
func srpResponder(t *testing.T, password string, bRandom []byte) responder {
	t.Helper()

	server := srp.NewServer(testSalt, srp.ComputeVerifier(password, testSalt))
	if bRandom != nil {
		server.SetRandom(bytes.NewReader(bRandom))
	}

	var mu sync.Mutex
	return func(req protocol.UnlockRequest) []protocol.Packet {
		mu.Lock()
		defer mu.Unlock()

		switch req.Step {
		case protocol.StepClientEphemeral:
			B, err := server.Challenge(req.Payload)
			if err != nil {
				return []protocol.Packet{protocol.NewErrorResponse(protocol.ErrCodeMalformed, err.Error()).Packet()}
			}
			payload := protocol.Challenge{Salt: testSalt, ServerEphemeral: B}.Marshal()
			return []protocol.Packet{protocol.UnlockResponse{Step: protocol.StepChallenge, Payload: payload}.Packet()}

		case protocol.StepClientProof:
			M2, err := server.VerifyClient(req.Payload)
			if err != nil {
				return []protocol.Packet{protocol.NewErrorResponse(protocol.ErrCodeAuthFailed, "bad proof").Packet()}
			}
			payload := protocol.FinalProof{ServerProof: M2, TxNonce: txNonce, RxNonce: rxNonce}.Marshal()
			return []protocol.Packet{protocol.UnlockResponse{Step: protocol.StepServerProof, Payload: payload}.Packet()}

		default:
			return []protocol.Packet{protocol.NewErrorResponse(protocol.ErrCodeUnexpectedStep, "").Packet()}
		}
	}
}

// tamper rewrites the replies of next with fn.
func tamper(next responder, fn func(req protocol.UnlockRequest, replies []protocol.Packet) []protocol.Packet) responder {
	return func(req protocol.UnlockRequest) []protocol.Packet {
		return fn(req, next(req))
	}
}

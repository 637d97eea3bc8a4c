package unlock

import (
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

func newTestCorrelator() *correlator {
	return newCorrelator(logging.NewDefaultLoggerFactory().NewLogger("unlock"))
}

func response(step protocol.Step, payload ...byte) protocol.Packet {
	return protocol.UnlockResponse{Step: step, Payload: payload}.Packet()
}

func TestCorrelator_DeliversExpectedStep(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepChallenge)

	c.HandlePacket(response(protocol.StepChallenge, 0xaa))

	resp, ok := c.wait(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, protocol.StepChallenge, resp.Step)
	assert.Equal(t, []byte{0xaa}, resp.Payload)
}

func TestCorrelator_IgnoresWithoutExpectation(t *testing.T) {
	c := newTestCorrelator()

	c.HandlePacket(response(protocol.StepChallenge))
	c.HandlePacket(protocol.NewErrorResponse(protocol.ErrCodeBusy, "").Packet())

	_, ok := c.wait(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestCorrelator_IgnoresOtherSteps(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepChallenge)

	c.HandlePacket(response(protocol.StepServerProof))
	c.HandlePacket(response(protocol.StepClientEphemeral))

	_, ok := c.wait(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestCorrelator_IgnoresOtherFrames(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepChallenge)

	c.HandlePacket(protocol.Packet{Type: protocol.FrameUnlockRequest, Payload: []byte{byte(protocol.StepChallenge), 0}})
	c.HandlePacket(protocol.Packet{Type: protocol.FrameUnlockResponse, Payload: []byte{byte(protocol.StepChallenge)}})

	_, ok := c.wait(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestCorrelator_DuplicateResolvesOnce(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepChallenge)

	c.HandlePacket(response(protocol.StepChallenge, 1))
	c.HandlePacket(response(protocol.StepChallenge, 2))

	resp, ok := c.wait(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, []byte{1}, resp.Payload, "first response wins")

	_, ok = c.wait(10 * time.Millisecond)
	assert.False(t, ok, "duplicate must not wake a second wait")
}

func TestCorrelator_StepLessErrorResponseAccepted(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepServerProof)

	c.HandlePacket(protocol.NewErrorResponse(protocol.ErrCodeAuthFailed, "nope").Packet())

	resp, ok := c.wait(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, protocol.ErrCodeAuthFailed, resp.Status)
}

func TestCorrelator_ErrorResponseForOtherStepIgnored(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepServerProof)

	c.HandlePacket(protocol.UnlockResponse{Step: protocol.StepChallenge, Status: protocol.ErrCodeBusy}.Packet())

	_, ok := c.wait(10 * time.Millisecond)
	assert.False(t, ok, "error tagged with a stale step must not wake the waiter")

	c.HandlePacket(protocol.UnlockResponse{Step: protocol.StepServerProof, Status: protocol.ErrCodeAuthFailed}.Packet())

	resp, ok := c.wait(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, protocol.ErrCodeAuthFailed, resp.Status)
}

func TestCorrelator_ExpectDiscardsStaleResponse(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepChallenge)
	c.HandlePacket(response(protocol.StepChallenge))

	c.expect(protocol.StepServerProof)
	c.HandlePacket(response(protocol.StepChallenge))

	_, ok := c.wait(10 * time.Millisecond)
	assert.False(t, ok)

	c.HandlePacket(response(protocol.StepServerProof, 4))
	resp, ok := c.wait(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, protocol.StepServerProof, resp.Step)
}

func TestCorrelator_WakesBlockedWaiter(t *testing.T) {
	c := newTestCorrelator()
	c.expect(protocol.StepChallenge)

	go func() {
		time.Sleep(5 * time.Millisecond)
		c.HandlePacket(response(protocol.StepChallenge))
	}()

	_, ok := c.wait(time.Second)
	assert.True(t, ok)
}

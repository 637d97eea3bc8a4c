package unlock

import (
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

// correlator matches inbound unlock responses to the step the handshake is
// waiting for and hands the first match to the blocked caller.
//
// The expected step, the delivered flag and the slot are guarded together by mu,
// so a response is either accepted for the current step or dropped.
type correlator struct {
	log logging.LeveledLogger

	mu        sync.Mutex
	expected  protocol.Step
	delivered bool
	slot      chan protocol.UnlockResponse
}

func newCorrelator(log logging.LeveledLogger) *correlator {
	return &correlator{
		log:  log,
		slot: make(chan protocol.UnlockResponse, 1),
	}
}

// expect arms the correlator for step and discards any response still held
// for the previous step.
func (c *correlator) expect(step protocol.Step) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expected = step
	c.delivered = false
	select {
	case <-c.slot:
	default:
	}
}

// HandlePacket implements protocol.Listener.
func (c *correlator) HandlePacket(pkt protocol.Packet) {
	if pkt.Type != protocol.FrameUnlockResponse {
		return
	}

	resp, err := protocol.ParseUnlockResponse(pkt)
	if err != nil {
		c.log.Debugf("ignoring unlock response: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.expected == protocol.StepNone:
		c.log.Debugf("ignoring %s response: no step expected", resp.Step)
		return
	case resp.Step != c.expected && (resp.Status == protocol.StatusOK || resp.Step != protocol.StepNone):
		// Error responses without a step answer whatever is pending.
		c.log.Debugf("ignoring %s response while expecting %s", resp.Step, c.expected)
		return
	case c.delivered:
		c.log.Debugf("ignoring duplicate %s response", resp.Step)
		return
	}

	c.delivered = true
	c.slot <- resp
}

// wait blocks until a response for the expected step arrives or timeout
// elapses. ok is false on timeout.
func (c *correlator) wait(timeout time.Duration) (resp protocol.UnlockResponse, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp = <-c.slot:
		return resp, true
	case <-timer.C:
		return protocol.UnlockResponse{}, false
	}
}

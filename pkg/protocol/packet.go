// Package protocol defines the unlock wire format exchanged between a radio and its clients.
package protocol

import "fmt"

// FrameType identifies the kind of packet carried by a link frame.
type FrameType uint8

// Frame types used by the unlock handshake.
const (
	// FrameUnlockRequest carries a client unlock request.
	FrameUnlockRequest FrameType = 0x50
	// FrameUnlockResponse carries a device unlock response.
	FrameUnlockResponse FrameType = 0x51
)

func (t FrameType) String() string {
	switch t {
	case FrameUnlockRequest:
		return "unlock-request"
	case FrameUnlockResponse:
		return "unlock-response"
	default:
		return fmt.Sprintf("frame(0x%02x)", uint8(t))
	}
}

// Packet is a single decoded frame received from or sent to a device.
type Packet struct {
	Type    FrameType
	Payload []byte
}

// Listener receives inbound packets. HandlePacket is called from the link's
// read goroutine and must not block.
type Listener interface {
	HandlePacket(pkt Packet)
}

package unlock

import "github.com/fzdarsky/radiounlock/pkg/protocol"

// Device is the packet channel to a radio. *link.Link implements it.
type Device interface {
	// IsOpen reports whether packets can be exchanged.
	IsOpen() bool
	// Send transmits a packet without waiting for acknowledgment.
	Send(pkt protocol.Packet) error
	// AddListener registers a listener for inbound packets.
	AddListener(l protocol.Listener)
	// RemoveListener unregisters a listener.
	RemoveListener(l protocol.Listener)
}

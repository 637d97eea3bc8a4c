// Package link carries protocol packets over a byte stream to a radio device.
//
// A Link owns a read goroutine that decodes frames and hands each packet to
// the currently registered listeners. Writes are serialized so that frames
// from concurrent senders never interleave.
package link

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

// ErrClosed is returned when sending on a closed link.
var ErrClosed = errors.New("link: closed")

// Config configures a Link.
type Config struct {
	// LoggerFactory creates the link logger.
	// If nil, the pion default logger factory is used.
	LoggerFactory logging.LoggerFactory
}

// Link is a framed packet channel over an io.ReadWriteCloser.
type Link struct {
	conn io.ReadWriteCloser
	log  logging.LeveledLogger

	writeMu sync.Mutex

	mu        sync.RWMutex
	listeners []protocol.Listener

	open      atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// New wraps conn in a Link and starts its read goroutine.
func New(conn io.ReadWriteCloser, config Config) *Link {
	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	l := &Link{
		conn: conn,
		log:  loggerFactory.NewLogger("link"),
		done: make(chan struct{}),
	}
	l.open.Store(true)

	go l.readLoop()

	return l
}

// IsOpen reports whether the link can still send and receive.
func (l *Link) IsOpen() bool {
	return l.open.Load()
}

// Send writes one packet. It returns once the frame is handed to the
// underlying stream; there is no delivery acknowledgment.
func (l *Link) Send(pkt protocol.Packet) error {
	if !l.IsOpen() {
		return ErrClosed
	}

	frame, err := Encode(pkt)
	if err != nil {
		return err
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", pkt.Type, err)
	}

	l.log.Tracef("sent %s frame (%d bytes)", pkt.Type, len(pkt.Payload))
	return nil
}

// AddListener registers a listener for inbound packets. Listeners are
// identified by interface equality, so the dynamic type must be comparable
// (a pointer in practice); other listeners are refused.
func (l *Link) AddListener(listener protocol.Listener) {
	if !isComparable(listener) {
		l.log.Errorf("refusing listener of non-comparable type %T", listener)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

// RemoveListener unregisters a listener. Removing an unknown listener is a no-op.
func (l *Link) RemoveListener(listener protocol.Listener) {
	if !isComparable(listener) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := slices.Index(l.listeners, listener); i >= 0 {
		l.listeners = slices.Delete(l.listeners, i, i+1)
	}
}

func isComparable(listener protocol.Listener) bool {
	return listener != nil && reflect.TypeOf(listener).Comparable()
}

// ListenerCount returns the number of registered listeners.
func (l *Link) ListenerCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.listeners)
}

// Done is closed once the read goroutine has exited.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Close closes the underlying stream. The read goroutine exits once the
// pending read returns; Done reports when that has happened.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.open.Store(false)
		err = l.conn.Close()
	})
	return err
}

func (l *Link) readLoop() {
	defer close(l.done)
	defer l.open.Store(false)

	r := bufio.NewReaderSize(l.conn, 4*(MaxPayloadSize+headerSize+trailerSize))
	for {
		pkt, err := ReadFrame(r)
		switch {
		case err == nil:
			l.dispatch(pkt)
		case errors.Is(err, ErrChecksum), errors.Is(err, ErrFrameTooLarge):
			l.log.Warnf("dropping frame: %v", err)
		default:
			if l.IsOpen() && !errors.Is(err, io.EOF) {
				l.log.Errorf("read failed: %v", err)
			}
			l.log.Debug("read loop stopped")
			return
		}
	}
}

func (l *Link) dispatch(pkt protocol.Packet) {
	l.mu.RLock()
	listeners := slices.Clone(l.listeners)
	l.mu.RUnlock()

	l.log.Tracef("received %s frame (%d bytes) for %d listeners", pkt.Type, len(pkt.Payload), len(listeners))

	for _, listener := range listeners {
		listener.HandlePacket(pkt)
	}
}

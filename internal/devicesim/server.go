package devicesim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/pion/logging"

	"github.com/fzdarsky/radiounlock/internal/link"
	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

// Server serves simulated unlock handshakes to one client connection at a time.
// Further connections are answered with ErrCodeBusy until the active one closes.
// The lockout is shared by all connections.
type Server struct {
	config  Config
	lockout *Lockout
	log     logging.LeveledLogger

	mu     sync.Mutex
	active bool
	wg     sync.WaitGroup
}

// NewServer creates a simulator server.
func NewServer(config Config) (*Server, error) {
	if config.Credentials == nil {
		return nil, fmt.Errorf("credentials are required")
	}
	if _, _, err := config.Credentials.Decode(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	if config.LoggerFactory == nil {
		config.LoggerFactory = logging.NewDefaultLoggerFactory()
	}

	return &Server{
		config:  config,
		lockout: NewLockout(config.MaxFailures, config.LockoutDuration),
		log:     config.LoggerFactory.NewLogger("devicesim"),
	}, nil
}

// Serve accepts connections on ln until ctx is canceled or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.log.Infof("serving unlock handshakes on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.ServeConn(ctx, conn); err != nil {
				s.log.Warnf("connection from %s: %v", conn.RemoteAddr(), err)
			}
		}()
	}
}

// ServeConn serves a single connection (a TCP client or a serial port)
// until it closes or ctx is canceled.
func (s *Server) ServeConn(ctx context.Context, conn io.ReadWriteCloser) error {
	l := link.New(conn, link.Config{LoggerFactory: s.config.LoggerFactory})
	defer l.Close() //nolint:errcheck

	if !s.acquire() {
		s.log.Info("rejecting connection: device busy")
		l.AddListener(&busyResponder{sender: l, log: s.log})
	} else {
		defer s.release()

		device, err := newDevice(l, s.config, s.lockout)
		if err != nil {
			return err
		}
		l.AddListener(device)
	}

	select {
	case <-l.Done():
	case <-ctx.Done():
	}
	return nil
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// busyResponder answers every unlock request with ErrCodeBusy.
type busyResponder struct {
	sender Sender
	log    logging.LeveledLogger
}

func (b *busyResponder) HandlePacket(pkt protocol.Packet) {
	if pkt.Type != protocol.FrameUnlockRequest {
		return
	}
	resp := protocol.NewErrorResponse(protocol.ErrCodeBusy, "another client is connected")
	if err := b.sender.Send(resp.Packet()); err != nil {
		b.log.Debugf("failed to send busy response: %v", err)
	}
}

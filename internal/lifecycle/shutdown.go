// Package lifecycle coordinates process shutdown for long-running binaries.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownManager turns SIGINT/SIGTERM or an explicit Shutdown call into a
// canceled context and records why.
type ShutdownManager struct {
	signals  chan os.Signal
	requests chan struct{}

	mu       sync.Mutex
	shutdown bool
	stopped  bool
	reason   string
}

// NewShutdownManager creates a new shutdown manager.
func NewShutdownManager() *ShutdownManager {
	return &ShutdownManager{
		signals:  make(chan os.Signal, 1),
		requests: make(chan struct{}, 1),
	}
}

// Start begins listening for shutdown signals (SIGTERM, SIGINT).
// The returned context is canceled when shutdown is initiated or ctx ends.
func (sm *ShutdownManager) Start(ctx context.Context) context.Context {
	signal.Notify(sm.signals, syscall.SIGTERM, syscall.SIGINT)

	shutdownCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()
		select {
		case sig, ok := <-sm.signals:
			if ok {
				sm.markShutdown(fmt.Sprintf("received signal: %v", sig))
			}
		case <-sm.requests:
		case <-ctx.Done():
		}
	}()

	return shutdownCtx
}

// Shutdown initiates shutdown with the given reason. Only the first reason is kept.
func (sm *ShutdownManager) Shutdown(reason string) {
	if !sm.markShutdown(reason) {
		return
	}

	select {
	case sm.requests <- struct{}{}:
	default:
	}
}

func (sm *ShutdownManager) markShutdown(reason string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return false
	}
	sm.shutdown = true
	sm.reason = reason
	return true
}

// IsShutdown returns whether shutdown has been initiated.
func (sm *ShutdownManager) IsShutdown() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.shutdown
}

// Reason returns the reason for shutdown.
func (sm *ShutdownManager) Reason() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.reason
}

// Stop stops listening for signals. It is safe to call more than once.
func (sm *ShutdownManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.stopped {
		return
	}

	sm.stopped = true
	signal.Stop(sm.signals)
	close(sm.signals)
}

// GracefulShutdown runs shutdownFunc and gives up after timeout.
func GracefulShutdown(ctx context.Context, shutdownFunc func(context.Context) error, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- shutdownFunc(shutdownCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timed out after %v", timeout)
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzdarsky/radiounlock/internal/config"
	"github.com/fzdarsky/radiounlock/internal/devicesim"
	"github.com/fzdarsky/radiounlock/internal/link"
	"github.com/fzdarsky/radiounlock/internal/logging"
	"github.com/fzdarsky/radiounlock/internal/unlock"
	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	var out bytes.Buffer
	require.NoError(t, runInit([]string{"-password", "bench", "-out", path}, &out))
	assert.Contains(t, out.String(), "Credentials written")

	first, err := devicesim.LoadCredentials(path)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, runInit([]string{"-password", "other", "-out", path}, &out))
	assert.Contains(t, out.String(), "already exist")

	kept, err := devicesim.LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, first, kept)

	out.Reset()
	require.NoError(t, runInit([]string{"-password", "other", "-out", path, "-force"}, &out))
	replaced, err := devicesim.LoadCredentials(path)
	require.NoError(t, err)
	assert.NotEqual(t, first.Verifier, replaced.Verifier)
}

func TestRunInit_BadFlag(t *testing.T) {
	err := runInit([]string{"-nope"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewServer_AppliesLockout(t *testing.T) {
	credsPath := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, runInit([]string{"-password", "bench", "-out", credsPath}, &bytes.Buffer{}))

	cfg := &config.Config{
		Device:    config.DeviceSettings{Name: "bench-radio", Credentials: credsPath},
		Transport: config.TransportSettings{Listen: "127.0.0.1:0"},
		Lockout:   config.LockoutSettings{MaxFailures: 1, Duration: "1m"},
	}

	logger := logging.New(logging.LevelError, logging.FormatJSON)
	logger.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	server, err := newServer(cfg, logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	authenticate := func(password string) error {
		l, err := link.Dial(ln.Addr().String(), time.Second, link.Config{})
		require.NoError(t, err)

		err = unlock.New(l, unlock.Config{Password: password, ResponseTimeout: time.Second}).Authenticate()
		// Let the simulator release the connection before the next dial
		require.NoError(t, l.Close())
		time.Sleep(50 * time.Millisecond)
		return err
	}

	err = authenticate("wrong")
	var serverErr *unlock.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, protocol.ErrCodeAuthFailed, serverErr.Code)

	err = authenticate("bench")
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, protocol.ErrCodeLocked, serverErr.Code, "one failure locks with max_failures 1")
}

func TestNewServer_MissingCredentials(t *testing.T) {
	cfg := &config.Config{
		Device:  config.DeviceSettings{Credentials: filepath.Join(t.TempDir(), "absent.yaml")},
		Lockout: config.LockoutSettings{MaxFailures: 3, Duration: "60s"},
	}

	_, err := newServer(cfg, logging.New(logging.LevelError, logging.FormatJSON))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

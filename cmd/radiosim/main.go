// radiosim simulates the device side of the radio unlock handshake on a TCP
// listener or a serial port, for bench testing radiounlock without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/fzdarsky/radiounlock/internal/config"
	"github.com/fzdarsky/radiounlock/internal/devicesim"
	"github.com/fzdarsky/radiounlock/internal/lifecycle"
	"github.com/fzdarsky/radiounlock/internal/link"
	"github.com/fzdarsky/radiounlock/internal/logging"
)

const shutdownTimeout = 5 * time.Second

var (
	// version is set by build flags
	version = "dev"
	// commit is set by build flags
	commit = "none"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	configPath := flag.String("config", "/etc/radiosim/config.yaml", "path to configuration file")
	flag.Parse()

	// Replaced once the configuration is loaded
	logger := logging.New(logging.LevelInfo, logging.FormatJSON)

	if err := run(*configPath, logger); err != nil {
		logger.Error("simulator failed", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func run(configPath string, logger *logging.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger = logging.New(level, logging.LogFormat(cfg.Logging.Format))

	server, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("radio simulator starting", map[string]any{
		"version":      version,
		"commit":       commit,
		"device":       cfg.Device.Name,
		"listen":       cfg.Transport.Listen,
		"serial_port":  cfg.Transport.SerialPort,
		"max_failures": cfg.Lockout.MaxFailures,
		"lockout":      cfg.Lockout.Duration,
	})

	sm := lifecycle.NewShutdownManager()
	ctx := sm.Start(context.Background())
	defer sm.Stop()

	served := make(chan error, 1)
	go func() {
		served <- serve(ctx, cfg, server)
	}()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	logger.Info("radio simulator stopping", map[string]any{
		"reason": sm.Reason(),
	})

	return lifecycle.GracefulShutdown(context.Background(), func(ctx context.Context) error {
		select {
		case err := <-served:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}, shutdownTimeout)
}

// newServer builds the simulator from the loaded configuration.
func newServer(cfg *config.Config, logger *logging.Logger) (*devicesim.Server, error) {
	creds, err := devicesim.LoadCredentials(cfg.Device.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	lockout, err := cfg.GetLockoutDuration()
	if err != nil {
		return nil, err
	}

	return devicesim.NewServer(devicesim.Config{
		Credentials:     creds,
		MaxFailures:     cfg.Lockout.MaxFailures,
		LockoutDuration: lockout,
		LoggerFactory:   logging.NewFactory(logger),
		OnUnlock: func(devicesim.Session) {
			logger.Info("device unlocked", map[string]any{
				"device": cfg.Device.Name,
			})
		},
	})
}

// serve runs the simulator on the configured transport until ctx is canceled.
func serve(ctx context.Context, cfg *config.Config, server *devicesim.Server) error {
	if cfg.Transport.Listen != "" {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", cfg.Transport.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Transport.Listen, err)
		}
		return server.Serve(ctx, ln)
	}

	port, err := link.OpenSerialPort(cfg.Transport.SerialPort, cfg.Transport.Baud)
	if err != nil {
		return err
	}
	return server.ServeConn(ctx, port)
}

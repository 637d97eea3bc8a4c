package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	pionlogging "github.com/pion/logging"
	"golang.org/x/term"

	"github.com/fzdarsky/radiounlock/internal/cli/config"
	"github.com/fzdarsky/radiounlock/internal/cli/output"
	"github.com/fzdarsky/radiounlock/internal/cli/session"
	"github.com/fzdarsky/radiounlock/internal/unlock"
	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

// UnlockCommand implements the 'unlock' command.
type UnlockCommand struct{}

// NewUnlockCommand creates a new unlock command instance.
func NewUnlockCommand() *UnlockCommand {
	return &UnlockCommand{}
}

// unlockResult is what the unlock command prints. Key material is only
// included on request; KeyID identifies the session without revealing it.
type unlockResult struct {
	Device     string `yaml:"device" json:"device"`
	State      string `yaml:"state" json:"state"`
	KeyID      string `yaml:"key_id" json:"key_id"`
	SessionKey string `yaml:"session_key,omitempty" json:"session_key,omitempty"`
	TxNonce    string `yaml:"tx_nonce,omitempty" json:"tx_nonce,omitempty"`
	RxNonce    string `yaml:"rx_nonce,omitempty" json:"rx_nonce,omitempty"`
	Saved      bool   `yaml:"saved" json:"saved"`
}

type unlockOptions struct {
	password        string
	responseTimeout time.Duration
	dialTimeout     time.Duration
	showSecrets     bool
	loggerFactory   pionlogging.LoggerFactory
}

// Execute runs the unlock command with the provided arguments.
func (c *UnlockCommand) Execute(args []string) {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)

	port := fs.String("port", "", "Serial port the radio is attached to")
	baud := fs.Int("baud", 0, "Serial baud rate")
	address := fs.String("address", "", "TCP address of the radio (host:port)")
	password := fs.String("password", "", "Unlock password (prompts if not provided)")
	timeout := fs.Duration("timeout", unlock.DefaultResponseTimeout, "Time to wait for each radio response")
	outputFormat := fs.String("output", "yaml", "Output format: yaml or json")
	save := fs.Bool("save", false, "Store the session material for the encryption layer")
	showSecrets := fs.Bool("show-secrets", false, "Include the session key and nonces in the output")
	verbose := fs.Bool("verbose", false, "Log handshake progress to stderr")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: radiounlock unlock [flags]

Unlock a radio using the SRP-6a handshake. On success the radio's secure
channel is open and the negotiated session key and nonces can be stored
for the encryption layer.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Radio on a serial port (prompts for the password)
  radiounlock unlock --port /dev/ttyUSB0

  # Radio or simulator reachable over TCP, store the session material
  radiounlock unlock --address 127.0.0.1:7373 --save

  # Non-interactive (for CI/CD)
  radiounlock unlock --port /dev/ttyUSB0 --password secret123 --output json
`)
	}

	if err := fs.Parse(args); err != nil {
		exitWithError("failed to parse flags: %v", err)
	}

	format, err := output.ParseFormat(*outputFormat)
	if err != nil {
		exitWithError("%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		exitWithError("failed to load configuration: %v", err)
	}

	cfg.ApplyFlags(*port, *baud, *address)

	if err := cfg.Validate(); err != nil {
		exitWithError("%v", err)
	}
	if err := cfg.RequireTarget(); err != nil {
		exitWithError("%v", err)
	}

	pass := *password
	if pass == "" {
		pass = promptPassword()
	}

	fmt.Fprintf(os.Stderr, "Unlocking %s...\n", cfg.Target())

	result, material, err := unlockRadio(cfg, unlockOptions{
		password:        pass,
		responseTimeout: *timeout,
		dialTimeout:     defaultDialTimeout,
		showSecrets:     *showSecrets,
		loggerFactory:   newLoggerFactory(*verbose),
	})
	if err != nil {
		exitWithError("%s", describeUnlockError(err))
	}

	if *save {
		store, err := session.NewStore()
		if err != nil {
			exitWithError("failed to access session store: %v", err)
		}
		if err := store.Save(material); err != nil {
			exitWithError("%v", err)
		}
		result.Saved = true

		// Save connection config for future commands
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save connection config: %v\n", err)
		}
	}

	if err := output.Print(os.Stdout, result, format); err != nil {
		exitWithError("%v", err)
	}
}

// unlockRadio opens the configured radio, runs one handshake and closes the link.
func unlockRadio(cfg *config.Config, opts unlockOptions) (*unlockResult, *session.Material, error) {
	l, err := openLink(cfg, opts.dialTimeout, opts.loggerFactory)
	if err != nil {
		return nil, nil, err
	}
	defer l.Close() //nolint:errcheck

	auth := unlock.New(l, unlock.Config{
		Password:        opts.password,
		ResponseTimeout: opts.responseTimeout,
		LoggerFactory:   opts.loggerFactory,
	})

	if err := auth.Authenticate(); err != nil {
		return nil, nil, err
	}

	material := &session.Material{
		Device:     cfg.Target(),
		SessionKey: auth.SessionKey(),
		TxNonce:    auth.TxNonce(),
		RxNonce:    auth.RxNonce(),
		CreatedAt:  time.Now(),
	}

	keyHash := sha256.Sum256(material.SessionKey)
	result := &unlockResult{
		Device: material.Device,
		State:  auth.State().String(),
		KeyID:  hex.EncodeToString(keyHash[:4]),
	}
	if opts.showSecrets {
		result.SessionKey = hex.EncodeToString(material.SessionKey)
		result.TxNonce = hex.EncodeToString(material.TxNonce)
		result.RxNonce = hex.EncodeToString(material.RxNonce)
	}

	return result, material, nil
}

// describeUnlockError adds a hint for the failures a user can act on.
func describeUnlockError(err error) string {
	var serverErr *unlock.ServerError
	switch {
	case errors.As(err, &serverErr) && serverErr.Code == protocol.ErrCodeAuthFailed:
		return fmt.Sprintf("%v\nCheck the password and try again", err)
	case errors.As(err, &serverErr) && serverErr.Code == protocol.ErrCodeLocked:
		return fmt.Sprintf("%v\nToo many failed attempts; wait for the lockout to expire", err)
	case errors.Is(err, unlock.ErrBadProof):
		return fmt.Sprintf("%v\nThe radio could not prove it knows the password; it may not be the expected device", err)
	case errors.Is(err, unlock.ErrResponseTimeout):
		return fmt.Sprintf("%v\nCheck that the radio is powered and the port or address is correct", err)
	default:
		return err.Error()
	}
}

// promptPassword prompts the user to enter the password (hidden input).
func promptPassword() string {
	fmt.Fprintf(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintf(os.Stderr, "\n")
	if err != nil {
		exitWithError("failed to read password: %v", err)
	}
	return string(password)
}

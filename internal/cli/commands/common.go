// Package commands provides CLI command implementations for the radiounlock tool.
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	pionlogging "github.com/pion/logging"

	"github.com/fzdarsky/radiounlock/internal/cli/clicontext"
	"github.com/fzdarsky/radiounlock/internal/cli/config"
	"github.com/fzdarsky/radiounlock/internal/link"
	"github.com/fzdarsky/radiounlock/internal/logging"
)

const defaultDialTimeout = 5 * time.Second

// openLink opens the radio configured in cfg: a TCP address when set, otherwise
// the serial port.
func openLink(cfg *config.Config, dialTimeout time.Duration, factory pionlogging.LoggerFactory) (*link.Link, error) {
	if err := cfg.RequireTarget(); err != nil {
		return nil, err
	}

	linkConfig := link.Config{LoggerFactory: factory}
	if cfg.Address != "" {
		return link.Dial(cfg.Address, dialTimeout, linkConfig)
	}
	return link.OpenSerial(cfg.Port, cfg.Baud, linkConfig)
}

// newLoggerFactory returns a factory writing human-readable logs to stderr so
// stdout stays reserved for command output.
func newLoggerFactory(verbose bool) pionlogging.LoggerFactory {
	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(level, logging.FormatHuman)
	logger.SetOutput(os.Stderr, os.Stderr)
	return logging.NewFactory(logger)
}

// promptYesNo prompts the user for a yes/no answer.
// With --assumeyes set it answers yes without prompting.
func promptYesNo(question string) bool {
	if clicontext.AssumeYes() {
		return true
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprintf(os.Stderr, "%s (yes/no): ", question)

		response, err := reader.ReadString('\n')
		if err != nil {
			return false
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		default:
			fmt.Fprintf(os.Stderr, "Please answer 'yes' or 'no'\n")
		}
	}
}

// exitWithError prints an error message to stderr and exits with status 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Package main provides the radiounlock CLI tool.
//
// radiounlock authenticates to a radio's secure channel with the SRP-6a
// unlock handshake, over a serial port or a TCP connection, and can store the
// resulting session material for the encryption layer.
package main

import (
	"fmt"
	"os"

	"github.com/fzdarsky/radiounlock/internal/cli/clicontext"
	"github.com/fzdarsky/radiounlock/internal/cli/commands"
)

var (
	// version is set by build flags
	version = "dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args, command := parseGlobalFlags(os.Args[1:])

	switch command {
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("radiounlock version %s\n", version)
		os.Exit(0)
	}

	switch command {
	case "unlock":
		commands.NewUnlockCommand().Execute(args)
	case "ports":
		commands.NewPortsCommand().Execute(args)
	case "forget":
		commands.NewForgetCommand().Execute(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// parseGlobalFlags processes global flags and returns remaining args and the command.
// Global flags like --assumeyes can appear anywhere in the argument list.
// Examples:
//
//	radiounlock -y forget --port /dev/ttyUSB0     (before command)
//	radiounlock forget -y --port /dev/ttyUSB0     (after command)
//	radiounlock forget --port /dev/ttyUSB0 -y     (at the end)
func parseGlobalFlags(args []string) ([]string, string) {
	remainingArgs := make([]string, 0, len(args))
	var command string

	for _, arg := range args {
		if arg == "--assumeyes" || arg == "-y" {
			clicontext.SetAssumeYes(true)
			continue
		}

		// First non-flag argument is the command
		if command == "" && !isFlag(arg) {
			command = arg
			continue
		}

		remainingArgs = append(remainingArgs, arg)
	}

	return remainingArgs, command
}

// isFlag returns true if the argument looks like a flag (starts with -).
func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `radiounlock - unlock a radio's secure channel

Usage:
  radiounlock <command> [flags]

Available Commands:
  unlock       Authenticate to a radio and open its secure channel
  ports        List serial ports
  forget       Delete stored session material for a radio

Global Flags:
  --help, -h        Show help information
  --version, -v     Show version information
  --assumeyes, -y   Automatically answer 'yes' to prompts (non-interactive mode)

Examples:
  # Find the port the radio is attached to
  radiounlock ports

  # Unlock it and store the session material
  radiounlock unlock --port /dev/ttyUSB0 --save

  # Unlock a simulated radio
  radiounlock unlock --address 127.0.0.1:7373

  # Drop the stored session material without prompting
  radiounlock -y forget --port /dev/ttyUSB0

For detailed help on a specific command, run:
  radiounlock <command> --help

`)
}

package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/fzdarsky/radiounlock/internal/cli/output"
	"github.com/fzdarsky/radiounlock/internal/link"
)

// PortsCommand implements the 'ports' command.
type PortsCommand struct{}

// NewPortsCommand creates a new ports command instance.
func NewPortsCommand() *PortsCommand {
	return &PortsCommand{}
}

// Execute lists the serial ports a radio could be attached to.
func (c *PortsCommand) Execute(args []string) {
	fs := flag.NewFlagSet("ports", flag.ExitOnError)
	outputFormat := fs.String("output", "yaml", "Output format: yaml or json")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: radiounlock ports [flags]

List the serial ports present on this system.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		exitWithError("failed to parse flags: %v", err)
	}

	format, err := output.ParseFormat(*outputFormat)
	if err != nil {
		exitWithError("%v", err)
	}

	ports, err := link.ListSerialPorts()
	if err != nil {
		exitWithError("%v", err)
	}
	if len(ports) == 0 {
		fmt.Fprintf(os.Stderr, "No serial ports found.\n")
		return
	}

	if err := output.Print(os.Stdout, map[string][]string{"ports": ports}, format); err != nil {
		exitWithError("%v", err)
	}
}

package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/fzdarsky/radiounlock/internal/cli/config"
	"github.com/fzdarsky/radiounlock/internal/cli/session"
)

// ForgetCommand implements the 'forget' command.
type ForgetCommand struct{}

// NewForgetCommand creates a new forget command instance.
func NewForgetCommand() *ForgetCommand {
	return &ForgetCommand{}
}

// Execute deletes the session material stored for a radio.
func (c *ForgetCommand) Execute(args []string) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)

	port := fs.String("port", "", "Serial port the radio is attached to")
	address := fs.String("address", "", "TCP address of the radio (host:port)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: radiounlock forget [flags]

Delete the session material stored by 'radiounlock unlock --save'.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		exitWithError("failed to parse flags: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		exitWithError("failed to load configuration: %v", err)
	}
	cfg.ApplyFlags(*port, 0, *address)

	if err := cfg.RequireTarget(); err != nil {
		exitWithError("%v", err)
	}

	store, err := session.NewStore()
	if err != nil {
		exitWithError("failed to access session store: %v", err)
	}

	removed, err := forgetSession(store, cfg.Target(), promptYesNo)
	if err != nil {
		exitWithError("%v", err)
	}
	if removed {
		fmt.Fprintf(os.Stderr, "Session material for %s deleted.\n", cfg.Target())
	}
}

// forgetSession deletes the material stored for device after confirm agrees.
// It reports whether anything was deleted.
func forgetSession(store *session.Store, device string, confirm func(string) bool) (bool, error) {
	question := fmt.Sprintf("Delete unreadable session material for %s?", device)

	m, err := store.Load(device)
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	case m == nil:
		fmt.Fprintf(os.Stderr, "No session material stored for %s.\n", device)
		return false, nil
	default:
		question = fmt.Sprintf("Delete session material for %s created %s?",
			device, m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if !confirm(question) {
		return false, nil
	}

	if err := store.Delete(device); err != nil {
		return false, err
	}
	return true, nil
}

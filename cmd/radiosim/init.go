package main

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/fzdarsky/radiounlock/internal/devicesim"
)

// runInit writes a credentials file (salt and verifier) for the simulator.
// An existing file is kept unless -force is given.
func runInit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	password := fs.String("password", "", "Unlock password (prompts if not provided)")
	out := fs.String("out", "credentials.yaml", "Path of the credentials file to write")
	force := fs.Bool("force", false, "Overwrite an existing credentials file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if devicesim.CredentialsExist(*out) && !*force {
		fmt.Fprintf(stdout, "Credentials already exist at %s\n", *out)
		return nil
	}

	pass := *password
	if pass == "" {
		var err error
		if pass, err = promptPassword(); err != nil {
			return err
		}
	}
	if pass == "" {
		return errors.New("password must not be empty")
	}

	creds, err := devicesim.NewCredentials(pass, rand.Reader)
	if err != nil {
		return err
	}
	if err := creds.Save(*out); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Credentials written to %s\n", *out)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprintf(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintf(os.Stderr, "\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

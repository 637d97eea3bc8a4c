// Package clicontext holds process-wide CLI flags shared by all commands.
package clicontext

import "sync/atomic"

// assumeYes answers 'yes' to every confirmation prompt when set (-y/--assumeyes).
var assumeYes atomic.Bool

// AssumeYes returns whether the CLI is in assume-yes mode.
func AssumeYes() bool {
	return assumeYes.Load()
}

// SetAssumeYes sets the assume-yes flag.
func SetAssumeYes(value bool) {
	assumeYes.Store(value)
}

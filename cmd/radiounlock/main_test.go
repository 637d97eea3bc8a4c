package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fzdarsky/radiounlock/internal/cli/clicontext"
)

func TestParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name              string
		input             []string
		expectedCommand   string
		expectedArgs      []string
		expectedAssumeYes bool
	}{
		{
			name:              "global flag before command",
			input:             []string{"-y", "forget", "--port", "/dev/ttyUSB0"},
			expectedCommand:   "forget",
			expectedArgs:      []string{"--port", "/dev/ttyUSB0"},
			expectedAssumeYes: true,
		},
		{
			name:              "global flag after command",
			input:             []string{"forget", "-y", "--port", "/dev/ttyUSB0"},
			expectedCommand:   "forget",
			expectedArgs:      []string{"--port", "/dev/ttyUSB0"},
			expectedAssumeYes: true,
		},
		{
			name:              "long form global flag at end",
			input:             []string{"unlock", "--address", "127.0.0.1:7373", "--assumeyes"},
			expectedCommand:   "unlock",
			expectedArgs:      []string{"--address", "127.0.0.1:7373"},
			expectedAssumeYes: true,
		},
		{
			name:              "no global flag",
			input:             []string{"unlock", "--port", "/dev/ttyUSB0"},
			expectedCommand:   "unlock",
			expectedArgs:      []string{"--port", "/dev/ttyUSB0"},
			expectedAssumeYes: false,
		},
		{
			name:              "command only",
			input:             []string{"ports"},
			expectedCommand:   "ports",
			expectedArgs:      []string{},
			expectedAssumeYes: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clicontext.SetAssumeYes(false)

			args, command := parseGlobalFlags(tt.input)

			assert.Equal(t, tt.expectedCommand, command)
			assert.Equal(t, tt.expectedArgs, args)
			assert.Equal(t, tt.expectedAssumeYes, clicontext.AssumeYes())
		})
	}
}

func TestIsFlag(t *testing.T) {
	assert.True(t, isFlag("-y"))
	assert.True(t, isFlag("--assumeyes"))
	assert.False(t, isFlag("unlock"))
	assert.False(t, isFlag("/dev/ttyUSB0"))
	assert.False(t, isFlag(""))
}

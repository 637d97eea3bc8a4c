package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	pionlogging "github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzdarsky/radiounlock/internal/logging"
)

func newTestLogger(level logging.LogLevel, format logging.LogFormat) (*logging.Logger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	l := logging.New(level, format)
	l.SetOutput(&stdout, &stderr)
	return l, &stdout, &stderr
}

func TestLogger_JSON(t *testing.T) {
	l, stdout, _ := newTestLogger(logging.LevelInfo, logging.FormatJSON)

	l.Info("device unlocked", map[string]any{"device": "/dev/ttyUSB0", "session_key": "00a9aa62"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "device unlocked", entry["message"])

	fields, ok := entry["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/dev/ttyUSB0", fields["device"])
	assert.Equal(t, "[REDACTED]", fields["session_key"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, stdout, stderr := newTestLogger(logging.LevelWarn, logging.FormatHuman)

	l.Trace("trace")
	l.Debug("debug")
	l.Info("info")
	assert.Empty(t, stdout.String())

	l.Warn("warn")
	assert.Contains(t, stdout.String(), "warn: warn")

	l.Error("boom")
	assert.Contains(t, stderr.String(), "error: boom")
}

func TestLogger_HumanFieldsSorted(t *testing.T) {
	l, stdout, _ := newTestLogger(logging.LevelDebug, logging.FormatHuman)

	l.Debug("frame", map[string]any{"type": "unlock-request", "len": 129})

	line := strings.TrimSpace(stdout.String())
	assert.True(t, strings.HasSuffix(line, "frame len=129 type=unlock-request"), line)
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, level)

	_, err = logging.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFactory_ScopedLogger(t *testing.T) {
	l, stdout, stderr := newTestLogger(logging.LevelTrace, logging.FormatJSON)

	var factory pionlogging.LoggerFactory = logging.NewFactory(l)
	log := factory.NewLogger("unlock")

	log.Tracef("sent %s request", "client-ephemeral")
	log.Infof("device %s", "unlocked")
	log.Errorf("failed: %v", "timeout")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "trace", entry["level"])
	assert.Equal(t, "sent client-ephemeral request", entry["message"])
	assert.Equal(t, map[string]any{"scope": "unlock"}, entry["fields"])

	assert.Contains(t, stderr.String(), "failed: timeout")
}

func TestFactory_RedactsFormattedSecrets(t *testing.T) {
	l, stdout, _ := newTestLogger(logging.LevelDebug, logging.FormatHuman)
	log := logging.NewFactory(l).NewLogger("devicesim")

	log.Debugf("derived session_key=%x", []byte{0xde, 0xad})

	assert.NotContains(t, stdout.String(), "dead")
	assert.Contains(t, stdout.String(), "[REDACTED]")
}

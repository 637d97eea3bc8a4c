package logging

import (
	"fmt"

	"github.com/pion/logging"
)

// Factory creates scoped loggers that write through a shared Logger.
// It implements the pion logging.LoggerFactory interface.
type Factory struct {
	logger *Logger
}

// NewFactory returns a LoggerFactory backed by logger.
func NewFactory(logger *Logger) *Factory {
	return &Factory{logger: logger}
}

// NewLogger returns a logger that tags every entry with scope.
func (f *Factory) NewLogger(scope string) logging.LeveledLogger {
	return &scopedLogger{
		logger: f.logger,
		fields: map[string]any{"scope": scope},
	}
}

// scopedLogger adapts Logger to logging.LeveledLogger. Formatted messages
// pass through the redactor because they cannot carry structured fields.
type scopedLogger struct {
	logger *Logger
	fields map[string]any
}

func (s *scopedLogger) msg(format string, args ...any) string {
	return s.logger.redactor.RedactString(fmt.Sprintf(format, args...))
}

func (s *scopedLogger) Trace(msg string) { s.logger.Trace(s.msg("%s", msg), s.fields) }

func (s *scopedLogger) Tracef(format string, args ...any) {
	s.logger.Trace(s.msg(format, args...), s.fields)
}

func (s *scopedLogger) Debug(msg string) { s.logger.Debug(s.msg("%s", msg), s.fields) }

func (s *scopedLogger) Debugf(format string, args ...any) {
	s.logger.Debug(s.msg(format, args...), s.fields)
}

func (s *scopedLogger) Info(msg string) { s.logger.Info(s.msg("%s", msg), s.fields) }

func (s *scopedLogger) Infof(format string, args ...any) {
	s.logger.Info(s.msg(format, args...), s.fields)
}

func (s *scopedLogger) Warn(msg string) { s.logger.Warn(s.msg("%s", msg), s.fields) }

func (s *scopedLogger) Warnf(format string, args ...any) {
	s.logger.Warn(s.msg(format, args...), s.fields)
}

func (s *scopedLogger) Error(msg string) { s.logger.Error(s.msg("%s", msg), s.fields) }

func (s *scopedLogger) Errorf(format string, args ...any) {
	s.logger.Error(s.msg(format, args...), s.fields)
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"spot-observer/src/models"

	"github.com/charmbracelet/log"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *log.Logger
	config interface{}
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. config may be a *models.MConfig, in
// which case its log_level is honoured, or nil for the default info level.
func NewLogger(config interface{}, name string) *Logger {
	return newLogger(os.Stderr, config, name)
}

// NewTestLogger writes to w at debug level.
func NewTestLogger(w io.Writer, name string) *Logger {
	l := newLogger(w, nil, name)
	l.logger.SetLevel(log.DebugLevel)
	return l
}

func newLogger(w io.Writer, config interface{}, name string) *Logger {
	level := log.InfoLevel
	if cfg, ok := config.(*models.MConfig); ok && cfg != nil {
		level = parseLevel(cfg.LogLevel)
	}

	l := &Logger{
		name: name,
		logger: log.NewWithOptions(w, log.Options{
			Prefix:          name,
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		}),
		config: config,
	}
	return l
}

// parseLevel maps the config names, including the "warning" and "critical"
// spellings, to charm levels.
func parseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning":
		return log.WarnLevel
	case "critical":
		return log.FatalLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// -----------------------------------------------------------------------------

// Named returns a logger sharing the backend under a different prefix.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:   name,
		logger: l.logger.WithPrefix(name),
		config: l.config,
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Fatal(fmt.Sprintf(format, args...))
}

// internal/utils/logger.go
package utils

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

type charmLogger struct {
	l *log.Logger
}

// NewLogger creates a logger writing to stderr at the level given by the
// CINESCRAPE_LOG_LEVEL environment variable (info when unset).
func NewLogger() Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	l.SetLevel(levelFromEnv())
	return &charmLogger{l: l}
}

// NewComponentLogger creates a logger tagged with a component name.
func NewComponentLogger(component string) Logger {
	base := NewLogger().(*charmLogger)
	return &charmLogger{l: base.l.With("component", component)}
}

func levelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv("CINESCRAPE_LOG_LEVEL")) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (c *charmLogger) Debug(msg string)                          { c.l.Debug(msg) }
func (c *charmLogger) Debugf(format string, args ...interface{}) { c.l.Debugf(format, args...) }
func (c *charmLogger) Info(msg string)                           { c.l.Info(msg) }
func (c *charmLogger) Infof(format string, args ...interface{})  { c.l.Infof(format, args...) }
func (c *charmLogger) Warn(msg string)                           { c.l.Warn(msg) }
func (c *charmLogger) Warnf(format string, args ...interface{})  { c.l.Warnf(format, args...) }
func (c *charmLogger) Error(msg string)                          { c.l.Error(msg) }
func (c *charmLogger) Errorf(format string, args ...interface{}) { c.l.Errorf(format, args...) }

func (c *charmLogger) WithField(key string, value interface{}) Logger {
	return &charmLogger{l: c.l.With(key, value)}
}

func (c *charmLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &charmLogger{l: c.l.With(args...)}
}

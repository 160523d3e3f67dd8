// Package logging wraps go.uber.org/zap with the context-aware "CDebugf"
// idiom this module's ancestry uses throughout its motion-planning code:
// every log call takes a context.Context first, so a future correlation ID
// or cancellation reason can be attached without changing every call site.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a context-threading wrapper around zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a Logger that writes through appender at the given level.
func New(appender Appender, level zapcore.Level) *Logger {
	core := &appenderCore{appender: appender, level: level}
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// NewDevelopment builds a Logger writing debug-and-above to stdout, for CLI
// and test use.
func NewDevelopment() *Logger {
	return New(NewStdoutAppender(), zapcore.DebugLevel)
}

// CDebugf logs at debug level. ctx is accepted for interface symmetry with
// the rest of this module's blocking calls; it carries no fields today.
func (l *Logger) CDebugf(_ context.Context, template string, args ...interface{}) {
	l.Debugf(template, args...)
}

// CInfof logs at info level.
func (l *Logger) CInfof(_ context.Context, template string, args ...interface{}) {
	l.Infof(template, args...)
}

// CWarnf logs at warn level.
func (l *Logger) CWarnf(_ context.Context, template string, args ...interface{}) {
	l.Warnf(template, args...)
}

// CErrorf logs at error level.
func (l *Logger) CErrorf(_ context.Context, template string, args ...interface{}) {
	l.Errorf(template, args...)
}

// appenderCore adapts a single Appender to zapcore.Core without the
// encoding/leveled-facility machinery zap's own cores carry; this module
// never needs multiple simultaneous sinks or dynamic level changes.
type appenderCore struct {
	appender Appender
	level    zapcore.Level
	fields   []zapcore.Field
}

func (c *appenderCore) Enabled(lvl zapcore.Level) bool { return lvl >= c.level }

func (c *appenderCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &appenderCore{appender: c.appender, level: c.level, fields: merged}
}

func (c *appenderCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *appenderCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.appender.Write(entry, append(c.fields, fields...))
}

func (c *appenderCore) Sync() error {
	return c.appender.Sync()
}

package logging

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"go.viam.com/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the timestamp layout used by ConsoleAppender.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries, the subset of zapcore.Core this
// package needs.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes human-readable lines to an io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender builds an appender that prints to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender builds an appender around an arbitrary writer.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// NewFileAppender builds an Appender that writes to filename with size-based
// rotation, returning an io.Closer the caller must close on shutdown.
func NewFileAppender(filename string) (Appender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename: filename,
		MaxSize:  1024, // megabytes; the file is rotated once it reaches this size
	}
	return NewWriterAppender(rotator), rotator
}

// StartPeriodicSync launches a background goroutine that calls
// appender.Sync() every interval. For the appender NewFileAppender returns,
// Sync is a no-op: ConsoleAppender.Sync only syncs writers that are an
// *os.File, and that appender writes through a lumberjack rotator. The
// goroutine runs via
// utils.PanicCapturingGo so a Sync failure's panic (none of lumberjack's
// own calls panic today, but a future Appender might) never takes down the
// planner loop. Cancel ctx to stop it.
func StartPeriodicSync(ctx context.Context, appender Appender, interval time.Duration) {
	utils.PanicCapturingGo(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = appender.Sync()
			}
		}
	})
}

// Write implements Appender by formatting entry as a single line.
func (c ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(DefaultTimeFormatStr),
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	buf, err := enc.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	_, err = c.Writer.Write(buf.Bytes())
	return err
}

// Sync implements Appender.
func (c ConsoleAppender) Sync() error {
	if f, ok := c.Writer.(*os.File); ok {
		return f.Sync()
	}
	return nil
}

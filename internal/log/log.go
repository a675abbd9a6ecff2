package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

func LevelFromString(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "NONE":
		return LevelNone
	default:
		return LevelDebug // Default to DEBUG
	}
}

// slogLevel maps a Level onto slog. LevelNone sits above every record level.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

type Logger struct {
	logger *slog.Logger
	level  Level
	lvar   *slog.LevelVar
}

// New writes text records to out. On Linux under a systemd unit the records
// are also sent to the journal.
func New(out io.Writer, level Level) *Logger {
	lvar := new(slog.LevelVar)
	lvar.Set(level.slogLevel())

	handlers := []slog.Handler{
		slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvar}),
	}
	if jh := journalHandler(lvar); jh != nil {
		handlers = append(handlers, jh)
	}
	return &Logger{
		logger: slog.New(slogmulti.Fanout(handlers...)),
		level:  level,
		lvar:   lvar,
	}
}

// With returns a logger that adds attrs to every record. The level stays
// shared with the parent.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...), level: l.level, lvar: l.lvar}
}

func (l *Logger) logf(level slog.Level, format string, v ...interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(slog.LevelDebug, format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(slog.LevelInfo, format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(slog.LevelWarn, format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(slog.LevelError, format, v...)
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.lvar.Set(level.slogLevel())
}

func (l *Logger) Level() Level {
	return l.level
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, LevelNone)
}

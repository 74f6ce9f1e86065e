// Package logging is the process-wide leveled logger. Call sites keep the printf style
// (Debugf/Infof/...) while records are emitted through log/slog so the CLI can switch
// between text and JSON output.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents severity.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	currentLevel int32 = int32(LevelInfo)
	// the handler always accepts everything; filtering happens on currentLevel
	baseLogger atomic.Pointer[slog.Logger]
)

func init() {
	SetOutput(os.Stderr, false)
}

// SetOutput replaces the destination. json selects slog's JSON handler.
func SetOutput(w io.Writer, json bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	baseLogger.Store(slog.New(h))
}

// ParseLevel maps a level name (debug, info, warn, error) to a LogLevel.
func ParseLevel(s string) (LogLevel, bool) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// SetLogLevel parses and sets global log level. Unknown names are ignored.
func SetLogLevel(s string) bool {
	l, ok := ParseLevel(s)
	if !ok {
		return false
	}
	atomic.StoreInt32(&currentLevel, int32(l))
	return true
}

func getLevel() LogLevel { return LogLevel(atomic.LoadInt32(&currentLevel)) }

// GetLogLevel returns current global log level.
func GetLogLevel() LogLevel { return getLevel() }

// Slog exposes the underlying logger for packages that prefer key/value records.
func Slog() *slog.Logger { return baseLogger.Load() }

func logf(l LogLevel, format string, args ...any) {
	if getLevel() > l {
		return
	}
	msg := format
	// Only format when there are args so literal % in prebuilt messages survive.
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	baseLogger.Load().Log(context.Background(), l.slogLevel(), msg)
}

func Debugf(format string, a ...any) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...any)  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...any)  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...any) { logf(LevelError, format, a...) }

// TimeTrack logs how long a phase took; use with defer.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}

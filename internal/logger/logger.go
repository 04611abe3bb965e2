// Package logger writes the run log of payslip-saver.
//
// Lines below the current Level are discarded. The default level is
// LevelInfo; --verbose or the log.verbose setting lowers it to LevelDebug,
// which also enables section headers. Unattended runs (cron, CI) can stamp
// every line with SetTimeFormat.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level orders log lines by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag written in front of each line.
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
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

var (
	mu         sync.Mutex
	level      Level     = LevelInfo
	output     io.Writer = os.Stderr
	timeFormat string
	now        func() time.Time = time.Now
)

// SetLevel sets the minimum level written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetVerbose switches between LevelDebug and LevelInfo.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelInfo)
}

// IsVerbose reports whether debug lines are written.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return level <= LevelDebug
}

// SetOutput sets the writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetTimeFormat prefixes every line with the current time in layout.
// An empty layout disables the prefix.
func SetTimeFormat(layout string) {
	mu.Lock()
	defer mu.Unlock()
	timeFormat = layout
}

// Debug writes a line at LevelDebug.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info writes a line at LevelInfo.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn writes a line at LevelWarn.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error writes a line at LevelError.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// Section writes a header in verbose mode, e.g. at the start of a run.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if level > LevelDebug {
		return
	}
	fmt.Fprintf(output, "\n%s=== %s ===\n", stamp(), name)
}

func logf(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, "%s[%s] %s\n", stamp(), l, fmt.Sprintf(format, args...))
}

// stamp must be called with mu held.
func stamp() string {
	if timeFormat == "" {
		return ""
	}
	return now().Format(timeFormat) + " "
}

// Package log provides logging utilities: colored console output with an
// optional trace level, and an optional rotating log file sink.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

var red = color.New(color.FgRed).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var gray = color.New(color.FgHiBlack).FprintfFunc()

// Logger provides leveled logging with trace mode support.
type Logger struct {
	trace bool

	mu   sync.Mutex
	file *lumberjack.Logger
}

// NewLogger creates a new logger with the given trace setting.
func NewLogger(trace bool) *Logger {
	return &Logger{trace: trace}
}

// WithFile mirrors all messages, uncolored, into a rotating log file at
// the given path.
func (l *Logger) WithFile(path string) *Logger {
	l.file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
	}
	return l
}

// TraceMsg logs a message only if trace mode is enabled.
// It is safe to call on a nil Logger.
func (l *Logger) TraceMsg(format string, a ...interface{}) {
	if l == nil || !l.trace {
		return
	}
	format = terminated(format)
	gray(os.Stderr, "[v] "+format, a...)
	l.toFile("[v] "+format, a...)
}

// InfoMsg prints an informational message to stderr in blue color.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	format = terminated(format)
	blue(os.Stderr, "[+] "+format, a...)
	l.toFile("[+] "+format, a...)
}

// WarnMsg prints a warning message to stderr in yellow color.
func (l *Logger) WarnMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	format = terminated(format)
	yellow(os.Stderr, "[!] Warning: "+format, a...)
	l.toFile("[!] Warning: "+format, a...)
}

// ErrorMsg prints an error message to stderr in red color.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	if l == nil {
		return
	}
	format = terminated(format)
	red(os.Stderr, "[!] Error: "+format, a...)
	l.toFile("[!] Error: "+format, a...)
}

func (l *Logger) toFile(format string, a ...interface{}) {
	if l.file == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, format, a...)
}

func terminated(format string) string {
	if !strings.HasSuffix(format, "\n") {
		return format + "\n"
	}
	return format
}

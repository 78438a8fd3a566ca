// Copyright (C) 2017 Librato, Inc. All rights reserved.

// Package log implements the leveled logger shared by the probe runtime. The
// level is checked with a single atomic load so that log calls on the probe
// fire path cost nothing when they are filtered out.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// LogLevel is a type that defines the log level.
type LogLevel uint32

// log levels
const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

const envProbersLogLevel = "PROBERS_DEBUG_LEVEL"

// LevelStr represents the log levels in strings
var LevelStr = []string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARN",
	ERROR:   "ERROR",
}

// DefaultLevel defines the default log level
const DefaultLevel = WARNING

var (
	level  = atomic.NewUint32(uint32(DefaultLevel))
	logger = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

	errUnknownLevel = errors.New("unknown log level")
)

func init() {
	initLog()
}

func initLog() {
	SetLevelFromStr(os.Getenv(envProbersLogLevel))
}

// SetOutput sets the output destination for the internal logger.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevelFromStr parses the input string to a LogLevel and changes the level
// of the global logger accordingly. Invalid input resets to DefaultLevel.
func SetLevelFromStr(s string) {
	l, ok := ToLogLevel(s)
	if !ok {
		l = DefaultLevel
	}
	SetLevel(l)
}

// ToLogLevel converts a string to a log level, or returns false for any error.
// Integers 0-3 are accepted as well as level names.
func ToLogLevel(s string) (LogLevel, bool) {
	if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if i >= 0 && i < len(LevelStr) {
			return LogLevel(i), true
		}
		return DefaultLevel, false
	}
	l, err := StrToLevel(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return DefaultLevel, false
	}
	return l, true
}

// StrToLevel converts a log level in string format (e.g., "DEBUG") to the
// corresponding LogLevel. It returns DefaultLevel and an error for invalid
// strings.
func StrToLevel(s string) (LogLevel, error) {
	for idx, name := range LevelStr {
		if name == s {
			return LogLevel(idx), nil
		}
	}
	return DefaultLevel, errors.Wrap(errUnknownLevel, s)
}

// SetLevel sets the level of the global logger
func SetLevel(l LogLevel) {
	level.Store(uint32(l))
}

// Level returns the current level of the global logger
func Level() LogLevel {
	return LogLevel(level.Load())
}

// String returns the name of the level
func (l LogLevel) String() string {
	if int(l) < len(LevelStr) {
		return LevelStr[l]
	}
	return "LogLevel(" + strconv.Itoa(int(l)) + ")"
}

// IsDebug reports whether debug messages are currently printed. Callers use it
// to skip building expensive log arguments.
func IsDebug() bool {
	return shouldLog(DEBUG)
}

func shouldLog(lv LogLevel) bool {
	return lv >= Level()
}

// logIt prints logs based on the debug level.
func logIt(lv LogLevel, msg string, args []interface{}) {
	if !shouldLog(lv) {
		return
	}

	// layer 1: logIt(), layer 2: its wrappers, e.g., Info()
	const skip = 2

	var sb strings.Builder
	if lv == DEBUG {
		// only pay for runtime.Caller when debugging
		if _, file, line, ok := runtime.Caller(skip); ok {
			fmt.Fprintf(&sb, "%-5s [probers] %s:%d ", LevelStr[lv], filepath.Base(file), line)
		} else {
			fmt.Fprintf(&sb, "%-5s [probers] na:na ", LevelStr[lv])
		}
	} else {
		fmt.Fprintf(&sb, "%-5s [probers] ", LevelStr[lv])
	}

	if msg == "" {
		sb.WriteString(fmt.Sprint(args...))
	} else {
		sb.WriteString(fmt.Sprintf(msg, args...))
	}

	logger.Print(sb.String())
}

// Logf formats the log message with specified args
// and prints it in the specified level
func Logf(lv LogLevel, msg string, args ...interface{}) {
	logIt(lv, msg, args)
}

// Log prints the log message in the specified level
func Log(lv LogLevel, args ...interface{}) {
	logIt(lv, "", args)
}

// Debugf formats the log message with specified args at DEBUG level
func Debugf(msg string, args ...interface{}) {
	logIt(DEBUG, msg, args)
}

// Debug prints the log message at DEBUG level
func Debug(args ...interface{}) {
	logIt(DEBUG, "", args)
}

// Infof formats the log message with specified args at INFO level
func Infof(msg string, args ...interface{}) {
	logIt(INFO, msg, args)
}

// Info prints the log message at INFO level
func Info(args ...interface{}) {
	logIt(INFO, "", args)
}

// Warningf formats the log message with specified args at WARN level
func Warningf(msg string, args ...interface{}) {
	logIt(WARNING, msg, args)
}

// Warning prints the log message at WARN level
func Warning(args ...interface{}) {
	logIt(WARNING, "", args)
}

// Errorf formats the log message with specified args at ERROR level
func Errorf(msg string, args ...interface{}) {
	logIt(ERROR, msg, args)
}

// Error prints the log message at ERROR level
func Error(args ...interface{}) {
	logIt(ERROR, "", args)
}

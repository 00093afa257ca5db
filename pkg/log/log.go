// Copyright 2026 The Kestrel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides a minimal leveled logging facility for the kernel
// and tooling. There is a single global logger; kernel paths are expected
// to check IsLogging before formatting anything expensive.
package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// Level is the log level.
type Level uint32

const (
	// Warning indicates a problem that the kernel survived.
	Warning Level = iota

	// Info indicates a lifecycle or state-change event.
	Info

	// Debug indicates verbose per-syscall tracing.
	Debug
)

// String implements fmt.Stringer.String.
func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return fmt.Sprintf("invalid level %d", uint32(l))
	}
}

// Logger is the log target interface.
type Logger interface {
	// Debugf logs a debug statement.
	Debugf(format string, v ...any)

	// Infof logs an informational statement.
	Infof(format string, v ...any)

	// Warningf logs a warning.
	Warningf(format string, v ...any)

	// IsLogging returns true iff the given level would be logged.
	IsLogging(level Level) bool
}

// Emitter is the lowest-level outlet for log statements.
type Emitter interface {
	// Emit emits the message at the given level.
	Emit(level Level, timestamp time.Time, format string, v ...any)
}

// Writer writes line-oriented log output to an io.Writer. Write errors are
// swallowed; there is nowhere to report them.
type Writer struct {
	Next io.Writer
}

// Emit implements Emitter.Emit.
func (w *Writer) Emit(level Level, timestamp time.Time, format string, v ...any) {
	fmt.Fprintf(w.Next, "%s [%s] %s\n",
		timestamp.Format(time.RFC3339Nano), level, fmt.Sprintf(format, v...))
}

// BasicLogger logs to an Emitter, gated by a Level.
type BasicLogger struct {
	Level
	Emitter
}

// Debugf implements Logger.Debugf.
func (l *BasicLogger) Debugf(format string, v ...any) {
	if l.IsLogging(Debug) {
		l.Emit(Debug, time.Now(), format, v...)
	}
}

// Infof implements Logger.Infof.
func (l *BasicLogger) Infof(format string, v ...any) {
	if l.IsLogging(Info) {
		l.Emit(Info, time.Now(), format, v...)
	}
}

// Warningf implements Logger.Warningf.
func (l *BasicLogger) Warningf(format string, v ...any) {
	if l.IsLogging(Warning) {
		l.Emit(Warning, time.Now(), format, v...)
	}
}

// IsLogging implements Logger.IsLogging.
func (l *BasicLogger) IsLogging(level Level) bool {
	return level <= l.Level
}

var logger atomic.Pointer[BasicLogger]

func init() {
	logger.Store(&BasicLogger{Level: Info, Emitter: &Writer{Next: os.Stderr}})
}

// Log retrieves the global logger.
func Log() *BasicLogger {
	return logger.Load()
}

// SetTarget sets the log target for the global logger.
func SetTarget(target Emitter) {
	old := Log()
	logger.Store(&BasicLogger{Level: old.Level, Emitter: target})
}

// SetLevel sets the log level for the global logger.
func SetLevel(newLevel Level) {
	old := Log()
	logger.Store(&BasicLogger{Level: newLevel, Emitter: old.Emitter})
}

// Debugf logs to the global logger.
func Debugf(format string, v ...any) {
	Log().Debugf(format, v...)
}

// Infof logs to the global logger.
func Infof(format string, v ...any) {
	Log().Infof(format, v...)
}

// Warningf logs to the global logger.
func Warningf(format string, v ...any) {
	Log().Warningf(format, v...)
}

// IsLogging returns whether the global logger logs at the given level.
func IsLogging(level Level) bool {
	return Log().IsLogging(level)
}

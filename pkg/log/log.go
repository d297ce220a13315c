// Copyright The ChipMap Authors. All Rights Reserved.
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

// Package log implements leveled, per-source logging on top of klog.
// Every package obtains its own Logger with Get(source). Debug messages
// are suppressed unless debugging has been enabled for the source,
// either by configuration, by EnableDebug(), or by the LOGGER_DEBUG
// environment variable.
package log

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Level is a logging severity level.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the interface for producing log messages for a source.
type Logger interface {
	// Debug formats and emits a debug message, if debugging is enabled.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})
	// Fatal formats and emits an error message and exits.
	Fatal(format string, args ...interface{})
	// Panic formats and emits an error message and panics with it.
	Panic(format string, args ...interface{})
	// DebugEnabled returns true if debugging is enabled for the source.
	DebugEnabled() bool
	// EnableDebug enables or disables debugging for the source, returning
	// the previous state.
	EnableDebug(bool) bool
	// Source returns the source of this logger.
	Source() string
}

// logger implements Logger for a single source.
type logger struct {
	source string
}

// logging is the shared state of all loggers.
type logging struct {
	sync.RWMutex
	level   atomic.Int32
	prefix  atomic.Bool
	dbgmap  srcmap
	debug   map[string]bool
	loggers map[string]logger
}

var (
	log    = newLogging()
	deflog = log.get("default")
)

func newLogging() *logging {
	l := &logging{
		dbgmap:  make(srcmap),
		debug:   make(map[string]bool),
		loggers: make(map[string]logger),
	}
	l.level.Store(int32(DefaultLevel))
	return l
}

// Default returns the default Logger.
func Default() Logger {
	return deflog
}

// Get returns the Logger for the given source, creating it if necessary.
func Get(source string) Logger {
	return log.get(source)
}

// NewLogger is an alias for Get.
func NewLogger(source string) Logger {
	return log.get(source)
}

// EnableDebug enables debugging for the given sources.
func EnableDebug(sources ...string) {
	log.Lock()
	defer log.Unlock()
	for _, src := range sources {
		log.dbgmap[src] = true
	}
	log.updateDebug()
}

// SetLevel sets the lowest severity of emitted messages.
func SetLevel(level Level) Level {
	return Level(log.level.Swap(int32(level)))
}

// ParseLevel parses the given string as a logging Level.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return DefaultLevel, loggerError("invalid logging level %q", value)
}

// String returns the name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("<level %d>", l)
}

func (l *logging) get(source string) logger {
	l.Lock()
	defer l.Unlock()

	if lg, ok := l.loggers[source]; ok {
		return lg
	}

	lg := logger{source: source}
	l.loggers[source] = lg
	l.debug[source] = l.dbgmap.enabled(source)

	return lg
}

// setDbgMap updates the debug source map. The caller must hold the lock.
func (l *logging) setDbgMap(m srcmap) {
	l.dbgmap = m
	l.updateDebug()
}

// setPrefix updates source prefixing. The caller must hold the lock.
func (l *logging) setPrefix(prefix bool) {
	l.prefix.Store(prefix)
}

func (l *logging) updateDebug() {
	for source := range l.loggers {
		l.debug[source] = l.dbgmap.enabled(source)
	}
}

func (l *logging) debugEnabled(source string) bool {
	l.RLock()
	defer l.RUnlock()
	return l.debug[source]
}

func (l *logging) enabled(level Level) bool {
	return Level(l.level.Load()) <= level
}

func (m srcmap) enabled(source string) bool {
	if state, ok := m[source]; ok {
		return state
	}
	return m["*"]
}

func (lg logger) format(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if log.prefix.Load() {
		return "[" + lg.source + "] " + msg
	}
	return msg
}

func (lg logger) Debug(format string, args ...interface{}) {
	if !lg.DebugEnabled() {
		return
	}
	klog.InfoDepth(1, "D: "+lg.format(format, args...))
}

func (lg logger) Info(format string, args ...interface{}) {
	if !log.enabled(LevelInfo) {
		return
	}
	klog.InfoDepth(1, lg.format(format, args...))
}

func (lg logger) Warn(format string, args ...interface{}) {
	if !log.enabled(LevelWarn) {
		return
	}
	klog.WarningDepth(1, lg.format(format, args...))
}

func (lg logger) Error(format string, args ...interface{}) {
	klog.ErrorDepth(1, lg.format(format, args...))
}

func (lg logger) Fatal(format string, args ...interface{}) {
	klog.FatalDepth(1, lg.format(format, args...))
}

func (lg logger) Panic(format string, args ...interface{}) {
	msg := lg.format(format, args...)
	klog.ErrorDepth(1, msg)
	panic(msg)
}

// DebugEnabled returns true if debugging is enabled for the source, or
// globally by setting the level to LevelDebug.
func (lg logger) DebugEnabled() bool {
	return log.enabled(LevelDebug) || log.debugEnabled(lg.source)
}

func (lg logger) EnableDebug(enable bool) bool {
	log.Lock()
	defer log.Unlock()
	old := log.debug[lg.source]
	log.dbgmap[lg.source] = enable
	log.debug[lg.source] = enable
	return old
}

func (lg logger) Source() string {
	return lg.source
}

// loggerError returns a package-specific formatted error.
func loggerError(format string, args ...interface{}) error {
	return fmt.Errorf("logger: "+format, args...)
}

package ari

import (
	"log"
	"os"
)

type LogLevel uint

const (
	LogNone LogLevel = iota
	LogError
	LogWarning
	LogInfo
	LogDebug
)

var logPrefixes = map[LogLevel]string{
	LogError:   "[ERROR] ",
	LogWarning: "[WARN] ",
	LogInfo:    "[INFO] ",
	LogDebug:   "[DEBUG] ",
}

// Logger is an interface for pluggable client loggers.
type Logger interface {
	Printf(level LogLevel, format string, v ...interface{})
}

// LoggerOptions configures the logger used by a client. The zero value logs
// errors to the standard logger.
type LoggerOptions struct {
	Logger Logger
	Level  LogLevel
}

func (opts LoggerOptions) logger() logger {
	l := logger{l: opts.Logger, level: opts.Level}
	if l.l == nil {
		l.l = &stdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
	}
	if l.level == LogNone {
		l.level = LogError
	}
	return l
}

// stdLogger wraps log.Logger to satisfy the Logger interface.
type stdLogger struct {
	*log.Logger
}

func (s *stdLogger) Printf(level LogLevel, format string, v ...interface{}) {
	s.Logger.Printf(logPrefixes[level]+format, v...)
}

// logger is the internal logging handle; it filters by level before
// delegating to the configured Logger.
type logger struct {
	l     Logger
	level LogLevel
}

func (l logger) is(level LogLevel) bool {
	return l.level != LogNone && l.level >= level
}

func (l logger) printf(level LogLevel, format string, v ...interface{}) {
	if l.is(level) {
		l.l.Printf(level, format, v...)
	}
}

func (l logger) Errorf(format string, v ...interface{}) { l.printf(LogError, format, v...) }
func (l logger) Warnf(format string, v ...interface{})  { l.printf(LogWarning, format, v...) }
func (l logger) Infof(format string, v ...interface{})  { l.printf(LogInfo, format, v...) }
func (l logger) Debugf(format string, v ...interface{}) { l.printf(LogDebug, format, v...) }

package logging

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// ParseLevel maps a case-insensitive level name to a zap level. Unknown or
// empty names yield def.
func ParseLevel(s string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return def
	}
}

// LevelFromEnv reads a level name from the environment variable name.
func LevelFromEnv(name string, def zapcore.Level) zapcore.Level {
	return ParseLevel(os.Getenv(name), def)
}

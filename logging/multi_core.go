package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees console and file sinks. The file sink is always JSON; the
// console sink is JSON too unless isDev is set. A nil file writes to the
// console only.
func NewMultiCore(level zapcore.Level, console, file zapcore.WriteSyncer, isDev bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, console, level)

	if file == nil {
		return consoleCore
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), file, level)
	return zapcore.NewTee(consoleCore, fileCore)
}

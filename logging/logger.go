// Package logging wraps zap for the handwrite CLI.
//
// Console output goes to stderr so that command output on stdout stays
// pipeable. The optional file sink is JSON and rotated by lumberjack. String
// fields are scrubbed of credentials before they reach either sink.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Development switches the console sink to the colored human format.
	Development bool

	// Level is the minimum level written to both sinks.
	Level zapcore.Level

	// FilePath enables the rotating JSON file sink when non-empty.
	FilePath string

	// File tunes rotation. Zero fields fall back to DefaultFileWriterConfig.
	File FileWriterConfig

	// Console overrides the console sink. Defaults to stderr.
	Console zapcore.WriteSyncer
}

// Logger is a zap logger with redaction applied to every field.
//
//	logger := logging.New(logging.Options{Level: logging.InfoLevel, FilePath: "handwrite.log"})
//	defer logger.Sync()
//	logger.Info("generation complete", zap.Int("page_count", 3))
type Logger struct {
	zap         *zap.Logger
	sugar       *zap.SugaredLogger
	logFilePath string
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	var file zapcore.WriteSyncer
	if opts.FilePath != "" {
		w, err := NewFileWriter(opts.FilePath, opts.File)
		if err != nil {
			return nil, err
		}
		file = w
	}

	core := NewMultiCore(opts.Level, console, file, opts.Development)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{zap: z, sugar: z.Sugar(), logFilePath: opts.FilePath}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

// FromZap wraps an existing zap logger, e.g. one built on zaptest/observer.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Debugw logs loosely typed key/value pairs.
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, redactKeysAndValues(keysAndValues)...)
}

func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, redactKeysAndValues(keysAndValues)...)
}

func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, redactKeysAndValues(keysAndValues)...)
}

func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, redactKeysAndValues(keysAndValues)...)
}

// Infof logs a formatted message. Arguments are not redacted.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

func (l *Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	z := l.zap.With(redactFields(fields)...)
	return &Logger{zap: z, sugar: z.Sugar(), logFilePath: l.logFilePath}
}

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger {
	z := l.zap.Named(name)
	return &Logger{zap: z, sugar: z.Sugar(), logFilePath: l.logFilePath}
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// LogFilePath is the file sink path, empty when logging to console only.
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return out
}

func redactField(f zap.Field) zap.Field {
	if IsSensitiveField(f.Key) {
		return zap.String(f.Key, RedactedPlaceholder)
	}
	if f.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(f.String); redacted != f.String {
			return zap.String(f.Key, redacted)
		}
	}
	return f
}

func redactKeysAndValues(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i < len(out)-1; i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if IsSensitiveField(key) {
			out[i+1] = RedactedPlaceholder
			continue
		}
		if s, ok := out[i+1].(string); ok {
			out[i+1] = RedactSensitiveData(s)
		}
	}
	return out
}

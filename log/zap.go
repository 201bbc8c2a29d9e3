// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DebugLogger is a global logger configured to output messages at DebugLevel
	// and above to os.Stdout.
	DebugLogger = NewZap(DebugLevel, os.Stdout)

	// DiscardLogger is a no-op logger that discards all log messages.
	DiscardLogger Logger = discardLogger{}

	// DefaultLogger is a global logger configured to output messages at InfoLevel
	// and above to os.Stdout.
	DefaultLogger = NewZap(InfoLevel, os.Stdout)
)

// Zap implements Logger interface with zap as the underlying logging library.
type Zap struct {
	logger  *zap.Logger
	sugar   *zap.SugaredLogger
	level   Level
	outputs []io.Writer
}

// enforce compilation and linter error
var _ Logger = &Zap{}

// NewZap creates an instance of Zap that writes JSON entries to the given writers.
// Entries at error level and above carry a stacktrace.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, writer := range writers {
		syncers = append(syncers, zapcore.AddSync(writer))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zap.CombineWriteSyncers(syncers...),
		toZapLevel(level))

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel))

	return &Zap{
		logger:  zapLogger,
		sugar:   zapLogger.Sugar(),
		level:   level,
		outputs: writers,
	}
}

// Debug starts a message with debug level
func (z *Zap) Debug(v ...any) {
	z.sugar.Debug(v...)
}

// Debugf starts a message with debug level
func (z *Zap) Debugf(format string, v ...any) {
	z.sugar.Debugf(format, v...)
}

// Panic starts a new message with panic level. The panic() function
// is called which stops the ordinary flow of a goroutine.
func (z *Zap) Panic(v ...any) {
	z.sugar.Panic(v...)
}

// Panicf starts a new message with panic level. The panic() function
// is called which stops the ordinary flow of a goroutine.
func (z *Zap) Panicf(format string, v ...any) {
	z.sugar.Panicf(format, v...)
}

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called which terminates the program immediately.
func (z *Zap) Fatal(v ...any) {
	z.sugar.Fatal(v...)
}

// Fatalf starts a new message with fatal level. The os.Exit(1) function
// is called which terminates the program immediately.
func (z *Zap) Fatalf(format string, v ...any) {
	z.sugar.Fatalf(format, v...)
}

// Error starts a new message with error level.
func (z *Zap) Error(v ...any) {
	z.sugar.Error(v...)
}

// Errorf starts a new message with error level.
func (z *Zap) Errorf(format string, v ...any) {
	z.sugar.Errorf(format, v...)
}

// Warn starts a new message with warn level
func (z *Zap) Warn(v ...any) {
	z.sugar.Warn(v...)
}

// Warnf starts a new message with warn level
func (z *Zap) Warnf(format string, v ...any) {
	z.sugar.Warnf(format, v...)
}

// Info starts a message with info level
func (z *Zap) Info(v ...any) {
	z.sugar.Info(v...)
}

// Infof starts a message with info level
func (z *Zap) Infof(format string, v ...any) {
	z.sugar.Infof(format, v...)
}

// With returns a Logger that includes the given key-value pairs in all subsequent log entries.
// A trailing key without value is recorded under "_".
func (z *Zap) With(keyValues ...any) Logger {
	if len(keyValues) == 0 {
		return z
	}

	fields := make([]zap.Field, 0, (len(keyValues)+1)/2)
	for i := 0; i < len(keyValues); i += 2 {
		if i+1 >= len(keyValues) {
			fields = append(fields, toZapField("_", keyValues[i]))
			break
		}
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, toZapField(key, keyValues[i+1]))
	}

	if len(fields) == 0 {
		return z
	}

	scoped := z.logger.With(fields...)
	return &Zap{
		logger:  scoped,
		sugar:   scoped.Sugar(),
		level:   z.level,
		outputs: z.outputs,
	}
}

// LogLevel returns the log level that is used
func (z *Zap) LogLevel() Level {
	return z.level
}

// LogOutput returns the log output that is set
func (z *Zap) LogOutput() []io.Writer {
	return z.outputs
}

// Flush syncs every file output. Standard streams are skipped since
// syncing a terminal returns an error on most platforms.
func (z *Zap) Flush() error {
	var err error
	for _, output := range z.outputs {
		file, ok := output.(*os.File)
		if !ok || isStdStream(file) {
			continue
		}
		err = multierr.Append(err, file.Sync())
	}
	return err
}

// toZapField converts a key-value pair to zap.Field using typed accessors where possible
// to avoid zap.Any reflection.
func toZapField(key string, val any) zap.Field {
	switch v := val.(type) {
	case string:
		return zap.String(key, v)
	case int:
		return zap.Int(key, v)
	case int64:
		return zap.Int64(key, v)
	case uint32:
		return zap.Uint32(key, v)
	case uint64:
		return zap.Uint64(key, v)
	case bool:
		return zap.Bool(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case error:
		return zap.NamedError(key, v)
	default:
		return zap.Any(key, val)
	}
}

func newEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func isStdStream(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return fd == os.Stdout.Fd() || fd == os.Stderr.Fd()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case InfoLevel:
		return zapcore.InfoLevel
	case DebugLevel:
		return zapcore.DebugLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.DebugLevel
	}
}

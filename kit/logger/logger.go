package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

type Logger struct {
	*zap.Logger
}

type loggerOptions struct {
	noStdout bool
}

type Option func(*loggerOptions)

func NoStdout(o *loggerOptions) {
	o.noStdout = true
}

// NewLogger writes JSON logs to filePath, and mirrors them to stderr
// unless the NoStdout option is set.
func NewLogger(filePath string, level Level, options ...Option) (*Logger, error) {
	var o loggerOptions
	for _, option := range options {
		option(&o)
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file failed")
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	syncer := zapcore.AddSync(file)
	if !o.noStdout {
		syncer = zapcore.NewMultiWriteSyncer(syncer, zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(encoder, syncer, level)

	return &Logger{Logger: zap.New(core)}, nil
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// Package log builds the process logger: structured lines on stdout, tee'd
// into a rotating JSON file when one is configured.
package log

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/williampepple1/catalog-crawler/internal/config"
)

// New builds the logger from config. The returned closer flushes the log
// file; lumberjack has no Sync, so it must be closed before exit.
func New(cfg config.LogConfig) (*zap.Logger, io.Closer, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, eris.Wrap(err, "log: parse level")
	}
	stdout, err := encoder(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	cores := []zapcore.Core{zapcore.NewCore(stdout, zapcore.Lock(os.Stdout), level)}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := rotatingFile(cfg)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(file), level))
		closer = file
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.DPanicLevel),
	)
	return logger, closer, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func encoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "", "json":
		return zapcore.NewJSONEncoder(encoderConfig()), nil
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig()), nil
	default:
		return nil, eris.Errorf("log: unknown format %q", format)
	}
}

func rotatingFile(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

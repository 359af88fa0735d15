// Package util provides low-level helpers shared by all other packages.
package util

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions controls where and how verbosely the debug logger writes.
// The chat UI owns the terminal, so console output goes to stderr and is
// normally restricted to errors while a session is interactive.
type LogOptions struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	Level string
	// File is an optional log file path. When set, records are written
	// there with rotation; an empty value disables the file core.
	File string
	// Console enables the stderr core.
	Console bool
	// ConsoleLevel optionally raises the stderr threshold above Level;
	// empty means Level.  Chat mode uses this to keep the terminal
	// quiet while a session is interactive.
	ConsoleLevel string
	// JSON switches the file core from console to JSON encoding.
	JSON bool
}

// NewLogger builds a zap.Logger from opts. The caller should defer
// logger.Sync(). A logger with no enabled core is valid and discards
// everything, so callers never need to nil-check.
func NewLogger(opts LogOptions) *zap.Logger {
	level := parseLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if opts.Console {
		consoleLevel := level
		if opts.ConsoleLevel != "" {
			consoleLevel = parseLevel(opts.ConsoleLevel)
		}
		consoleEnc := zapcore.NewConsoleEncoder(encCfg)
		cores = append(cores, zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stderr), consoleLevel))
	}
	if opts.File != "" {
		var enc zapcore.Encoder
		if opts.JSON {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		ws := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MiB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		cores = append(cores, zapcore.NewCore(enc, ws, level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

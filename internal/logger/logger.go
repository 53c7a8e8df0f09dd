// Package logger builds the structured logr.Logger used across envtable.
// Records are JSON lines produced by zap.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug int8 = -1
	LevelInfo  int8 = 0
)

// Keys attached to every logger built for a command.
const (
	RootCommandKey = "cmd"
	SubCommandKey  = "subcmd"
	FileKey        = "file"
)

// Get returns a logger writing to stderr at level (zap semantics: -1 debug,
// 0 info).
func Get(level int8) logr.Logger {
	return New(os.Stderr, level)
}

func New(w io.Writer, level int8) logr.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(zapcore.Level(level)),
	)
	return zapr.NewLogger(zap.New(core))
}

// ToFile returns a logger appending to path, for use while a full-screen UI
// owns the terminal. The returned func closes the file.
func ToFile(path string, level int8) (logr.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return logr.Discard(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level), f.Close, nil
}

// ParseLevel maps a settings value to a zap level. Unknown names mean info.
func ParseLevel(name string) int8 {
	if strings.EqualFold(strings.TrimSpace(name), "debug") {
		return LevelDebug
	}
	return LevelInfo
}

func WithValues(l logr.Logger, kv ...any) logr.Logger {
	return l.WithValues(kv...)
}

func WithLogger(ctx context.Context, l logr.Logger) context.Context {
	return logr.NewContext(ctx, l)
}

// FromContext returns the context logger, or a discarding one.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

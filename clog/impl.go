package clog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// loggerImpl 是 Logger 接口的 slog 实现。
type loggerImpl struct {
	handler   slog.Handler
	levelVar  *slog.LevelVar
	baseAttrs []slog.Attr
}

func newLogger(config *Config) (Logger, error) {
	w, err := resolveWriter(config.Output)
	if err != nil {
		return nil, err
	}

	level, _ := ParseLevel(config.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(level))

	opts := &slog.HandlerOptions{
		AddSource: config.AddSource,
		Level:     levelVar,
	}

	var handler slog.Handler
	if strings.ToLower(config.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &loggerImpl{handler: handler, levelVar: levelVar}, nil
}

func resolveWriter(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", output, err)
		}
		return f, nil
	}
}

func (l *loggerImpl) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

func (l *loggerImpl) With(fields ...Field) Logger {
	child := &loggerImpl{
		handler:  l.handler,
		levelVar: l.levelVar,
	}
	child.baseAttrs = append(append([]slog.Attr{}, l.baseAttrs...), fields...)
	return child
}

func (l *loggerImpl) SetLevel(level Level) error {
	l.levelVar.Set(slog.Level(level))
	return nil
}

func (l *loggerImpl) log(level Level, msg string, fields ...Field) {
	slogLevel := slog.Level(level)
	ctx := context.Background()
	if !l.handler.Enabled(ctx, slogLevel) {
		return
	}

	// 跳过 runtime.Callers、log 和外层的 Debug/Info/Warn/Error
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), slogLevel, msg, pcs[0])
	record.AddAttrs(l.baseAttrs...)
	record.AddAttrs(fields...)

	_ = l.handler.Handle(ctx, record)
}

// Package clog 为 snowgen 提供基于 slog 的轻量结构化日志组件。
//
// 特性：
//   - 抽象接口，不向调用方暴露底层实现（slog）
//   - 零外部依赖（仅依赖 Go 标准库）
//   - 库内部默认静默（Discard），由应用显式注入 Logger
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("generator ready", clog.Int64("worker_id", 7))
package clog

import "fmt"

// Logger 日志接口，提供结构化日志记录功能。
//
// 通过 With 创建带预设字段的子 Logger：
//
//	gen := logger.With(clog.String("component", "snowgen"))
//	gen.Info("snapshot saved")
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger，预设字段出现在所有后续日志中。
	With(fields ...Field) Logger

	// SetLevel 动态调整日志级别。
	SetLevel(level Level) error
}

// New 创建 Logger 实例。config 为 nil 时使用默认配置（info / console / stdout）。
func New(config *Config) (Logger, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid clog config: %w", err)
	}
	return newLogger(config)
}

// Default 返回一个输出到 stdout 的 console 格式 Logger，适合示例和本地调试。
func Default() Logger {
	logger, err := New(nil)
	if err != nil {
		return Discard()
	}
	return logger
}

// Discard 返回一个静默 Logger，所有方法均为空操作。
func Discard() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...Field) {}
func (noopLogger) Info(msg string, fields ...Field)  {}
func (noopLogger) Warn(msg string, fields ...Field)  {}
func (noopLogger) Error(msg string, fields ...Field) {}
func (n noopLogger) With(fields ...Field) Logger     { return n }
func (noopLogger) SetLevel(level Level) error        { return nil }

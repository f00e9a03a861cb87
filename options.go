package snowgen

import (
	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/metrics"
	"github.com/ceyewan/snowgen/store"
)

// Options 生成器的可选依赖。
type Options struct {
	Logger clog.Logger
	Meter  metrics.Meter
	Clock  clock.Clock
	Store  store.Store
}

// Option 配置可选依赖的函数选项。
type Option func(*Options)

// WithLogger 注入日志器，默认丢弃所有日志。
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithMeter 注入指标 Meter，默认不上报指标。
func WithMeter(m metrics.Meter) Option {
	return func(o *Options) {
		o.Meter = m
	}
}

// WithClock 注入时钟源，默认系统时钟。测试中配合 clock.Manual
// 可以精确驱动毫秒推进、序列号回绕和时钟回拨。
func WithClock(clk clock.Clock) Option {
	return func(o *Options) {
		o.Clock = clk
	}
}

// WithStore 注入状态存储。注入后构造时恢复快照、Close 时保存快照；
// 配合 Config.SnapshotIntervalMs 可开启周期快照。
func WithStore(s store.Store) Option {
	return func(o *Options) {
		o.Store = s
	}
}

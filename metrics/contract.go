// Package metrics 为 snowgen 提供基于 OpenTelemetry 的指标收集能力。
// 指标通过 Prometheus Exporter 暴露，可选内置 HTTP 端点。
// 库内部默认不产生指标，由应用注入 Meter。
package metrics

import "context"

// Label 指标标签。
type Label struct {
	Key   string
	Value string
}

// L 创建标签的简写。
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}

// Counter 只增计数器。
type Counter interface {
	// Inc 将计数器加一。
	Inc(ctx context.Context, labels ...Label)

	// Add 将计数器增加 val，val 应为非负数。
	Add(ctx context.Context, val float64, labels ...Label)
}

// Gauge 可任意增减的瞬时值。
type Gauge interface {
	// Set 将 gauge 设置为 val。
	Set(ctx context.Context, val float64, labels ...Label)
}

// Histogram 数值分布直方图。
type Histogram interface {
	// Record 记录一个观测值。
	Record(ctx context.Context, val float64, labels ...Label)
}

// Meter 指标工厂。同名指标重复创建返回同一底层仪表。
type Meter interface {
	Counter(name, desc string) (Counter, error)
	Gauge(name, desc string) (Gauge, error)
	Histogram(name, desc string) (Histogram, error)

	// Shutdown 刷新并关闭底层 Provider。
	Shutdown(ctx context.Context) error
}

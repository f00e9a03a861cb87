package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// Config 指标配置。
//
//	Enabled:     关闭时 New 返回静默 Meter
//	ServiceName: 资源标识
//	Port/Path:   大于 0 / 非空时启动 promhttp 端点
type Config struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
	Version     string `yaml:"version" json:"version"`
	Port        int    `yaml:"port" json:"port"`
	Path        string `yaml:"path" json:"path"`
}

// New 创建 Meter 实例。
func New(cfg *Config) (Meter, error) {
	if cfg == nil || !cfg.Enabled {
		return Discard(), nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	if cfg.Port > 0 && cfg.Path != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Path, promhttp.Handler())
			srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
			_ = srv.ListenAndServe()
		}()
	}

	return &meterImpl{meter: mp.Meter("snowgen"), provider: mp}, nil
}

// Discard 返回静默 Meter，所有仪表均为空操作。
func Discard() Meter {
	return noopMeter{}
}

// ========================================
// OTel 实现
// ========================================

type meterImpl struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
}

func (m *meterImpl) Counter(name, desc string) (Counter, error) {
	c, err := m.meter.Float64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	return &counterImpl{c: c}, nil
}

func (m *meterImpl) Gauge(name, desc string) (Gauge, error) {
	g, err := m.meter.Float64Gauge(name, metric.WithDescription(desc))
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", name, err)
	}
	return &gaugeImpl{g: g}, nil
}

func (m *meterImpl) Histogram(name, desc string) (Histogram, error) {
	h, err := m.meter.Float64Histogram(name, metric.WithDescription(desc))
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", name, err)
	}
	return &histogramImpl{h: h}, nil
}

func (m *meterImpl) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

func toAttrs(labels []Label) metric.MeasurementOption {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	return metric.WithAttributes(attrs...)
}

type counterImpl struct {
	c metric.Float64Counter
}

func (c *counterImpl) Inc(ctx context.Context, labels ...Label) {
	c.c.Add(ctx, 1, toAttrs(labels))
}

func (c *counterImpl) Add(ctx context.Context, val float64, labels ...Label) {
	c.c.Add(ctx, val, toAttrs(labels))
}

type gaugeImpl struct {
	g metric.Float64Gauge
}

func (g *gaugeImpl) Set(ctx context.Context, val float64, labels ...Label) {
	g.g.Record(ctx, val, toAttrs(labels))
}

type histogramImpl struct {
	h metric.Float64Histogram
}

func (h *histogramImpl) Record(ctx context.Context, val float64, labels ...Label) {
	h.h.Record(ctx, val, toAttrs(labels))
}

// ========================================
// 静默实现
// ========================================

type noopMeter struct{}

func (noopMeter) Counter(name, desc string) (Counter, error)     { return noopCounter{}, nil }
func (noopMeter) Gauge(name, desc string) (Gauge, error)         { return noopGauge{}, nil }
func (noopMeter) Histogram(name, desc string) (Histogram, error) { return noopHistogram{}, nil }
func (noopMeter) Shutdown(ctx context.Context) error             { return nil }

type noopCounter struct{}

func (noopCounter) Inc(ctx context.Context, labels ...Label)              {}
func (noopCounter) Add(ctx context.Context, val float64, labels ...Label) {}

type noopGauge struct{}

func (noopGauge) Set(ctx context.Context, val float64, labels ...Label) {}

type noopHistogram struct{}

func (noopHistogram) Record(ctx context.Context, val float64, labels ...Label) {}

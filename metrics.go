package snowgen

import (
	"context"
	"errors"

	"github.com/ceyewan/snowgen/metrics"
)

// 指标名称，注入 Meter 后上报。
const (
	MetricGenerated        = "snowgen_ids_generated_total"
	MetricClockDrift       = "snowgen_clock_drift_total"
	MetricWaitTimeout      = "snowgen_wait_timeout_total"
	MetricSnapshotFailures = "snowgen_snapshot_failures_total"
	MetricBatchSize        = "snowgen_batch_size"
)

// instruments 生成器的指标仪表。nil 接收者表示未注入 Meter，
// 所有方法对 nil 安全，热路径无需判空分支。
type instruments struct {
	generated       metrics.Counter
	clockDrift      metrics.Counter
	waitTimeout     metrics.Counter
	snapshotFailure metrics.Counter
	batchSize       metrics.Histogram
}

func newInstruments(m metrics.Meter) (*instruments, error) {
	if m == nil {
		return nil, nil
	}

	var inst instruments
	var err error

	if inst.generated, err = m.Counter(MetricGenerated, "Total IDs generated"); err != nil {
		return nil, err
	}
	if inst.clockDrift, err = m.Counter(MetricClockDrift, "Clock backwards detections"); err != nil {
		return nil, err
	}
	if inst.waitTimeout, err = m.Counter(MetricWaitTimeout, "Sequence wait timeouts"); err != nil {
		return nil, err
	}
	if inst.snapshotFailure, err = m.Counter(MetricSnapshotFailures, "Snapshot save failures"); err != nil {
		return nil, err
	}
	if inst.batchSize, err = m.Histogram(MetricBatchSize, "NextBatch request sizes"); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (i *instruments) onGenerated(n int) {
	if i == nil {
		return
	}
	if n == 1 {
		i.generated.Inc(context.Background())
		return
	}
	i.generated.Add(context.Background(), float64(n))
}

func (i *instruments) onBatch(n int) {
	if i == nil {
		return
	}
	i.batchSize.Record(context.Background(), float64(n))
}

func (i *instruments) onError(err error) {
	if i == nil {
		return
	}
	switch {
	case errors.Is(err, ErrClockBackwards):
		i.clockDrift.Inc(context.Background())
	case errors.Is(err, ErrSequenceWaitTimeout):
		i.waitTimeout.Inc(context.Background())
	}
}

func (i *instruments) onSnapshotFailure(ctx context.Context) {
	if i == nil {
		return
	}
	i.snapshotFailure.Inc(ctx)
}

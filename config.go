package snowgen

import (
	"time"

	"github.com/ceyewan/snowgen/layout"
	"github.com/ceyewan/snowgen/xerrors"
)

// DefaultEpoch 默认纪元：2020-01-01T00:00:00Z 的 Unix 毫秒时间戳。
// 41 bit 增量自该点起可用约 69 年。
const DefaultEpoch int64 = 1577836800000

// 并发守卫实现，语义完全一致，仅吞吐特征不同。
const (
	// GuardMutex 互斥锁守卫，默认。
	GuardMutex = "mutex"
	// GuardNone 无守卫，调用方保证同一时刻只有一个 goroutine 调用。
	GuardNone = "none"
	// GuardAtomic 无锁 CAS 守卫，高并发下避免锁竞争。
	GuardAtomic = "atomic"
)

const (
	defaultMaxWaitMs       = 1000
	defaultSkewToleranceMs = 10000
)

// Config 生成器配置。零值字段取默认值，DatacenterID/WorkerID 必须显式给出
// （零本身是合法 ID）。
type Config struct {
	// Epoch 纪元的 Unix 毫秒时间戳，默认 DefaultEpoch。
	// 同一 ID 空间内的所有生成器必须使用相同纪元，且部署后不可再变。
	Epoch int64 `json:"epoch" yaml:"epoch"`

	// DatacenterID 数据中心 ID，[0, 31]。
	DatacenterID int64 `json:"datacenterId" yaml:"datacenterId"`

	// WorkerID 工作节点 ID，[0, 31]。
	WorkerID int64 `json:"workerId" yaml:"workerId"`

	// Guard 并发守卫："mutex"（默认）、"none"、"atomic"。
	Guard string `json:"guard" yaml:"guard"`

	// MaxWaitMs 序列号耗尽后等待下一毫秒的上限（毫秒），超过返回
	// ErrSequenceWaitTimeout。默认 1000。
	MaxWaitMs int64 `json:"maxWaitMs" yaml:"maxWaitMs"`

	// SkewToleranceMs Validate 允许 ID 时间戳领先本地时钟的幅度（毫秒），
	// 吸收机器间时钟偏差。默认 10000。
	SkewToleranceMs int64 `json:"skewToleranceMs" yaml:"skewToleranceMs"`

	// SnapshotIntervalMs 后台快照间隔（毫秒），0 表示只在 Close 时快照。
	// 仅在注入了 Store 时生效。
	SnapshotIntervalMs int64 `json:"snapshotIntervalMs" yaml:"snapshotIntervalMs"`
}

func (c *Config) setDefaults() {
	if c.Epoch == 0 {
		c.Epoch = DefaultEpoch
	}
	if c.Guard == "" {
		c.Guard = GuardMutex
	}
	if c.MaxWaitMs <= 0 {
		c.MaxWaitMs = defaultMaxWaitMs
	}
	if c.SkewToleranceMs <= 0 {
		c.SkewToleranceMs = defaultSkewToleranceMs
	}
}

func (c *Config) validate() error {
	if c.Epoch < 0 {
		return xerrors.WithCode(ErrInvalidInput, "epoch_negative")
	}
	if c.DatacenterID < 0 || c.DatacenterID > layout.MaxDatacenterID {
		return xerrors.WithCode(ErrInvalidInput, "datacenter_id_out_of_range")
	}
	if c.WorkerID < 0 || c.WorkerID > layout.MaxWorkerID {
		return xerrors.WithCode(ErrInvalidInput, "worker_id_out_of_range")
	}
	switch c.Guard {
	case GuardMutex, GuardNone, GuardAtomic:
	default:
		return xerrors.WithCode(ErrInvalidInput, "unsupported_guard")
	}
	if c.SnapshotIntervalMs < 0 {
		return xerrors.WithCode(ErrInvalidInput, "snapshot_interval_negative")
	}
	return nil
}

func (c *Config) maxWait() time.Duration {
	return time.Duration(c.MaxWaitMs) * time.Millisecond
}

// Package snowgen 提供 Snowflake 风格的分布式有序 ID 生成能力。
//
// 标识符为 64 位整数：41 bit 毫秒时间戳增量 + 5 bit 数据中心 ID +
// 5 bit 工作节点 ID + 12 bit 毫秒内序列号（最高位恒为 0）。同一生成器
// 产出的 ID 按调用顺序严格递增；不同 (datacenter, worker) 之间永不碰撞。
//
// 生成器是显式构造的普通值，由应用持有，不存在进程级单例；一个进程可以
// 为不同分片持有多个互不干扰的生成器。工作节点 ID 在启动时一次性确定
// （静态配置或 allocator 包的租约分配），之后身份不可变。
//
// 时钟回拨从不静默修正：任何回拨都以带回拨幅度的错误上报，状态保持不变，
// 宁可拒绝发号也不冒重复发号的风险。
//
// 基本使用：
//
//	gen, err := snowgen.New(&snowgen.Config{
//	    DatacenterID: 1,
//	    WorkerID:     2,
//	})
//	if err != nil {
//	    panic(err)
//	}
//	id, err := gen.Next()
package snowgen

import (
	"context"

	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/xerrors"
)

// Generator ID 生成器。所有实现并发安全（Guard="none" 除外，见 Config）。
type Generator interface {
	// Next 生成下一个 ID。
	Next() (int64, error)

	// NextBatch 生成 n 个严格递增的 ID，n ∈ [1, MaxBatchSize]。
	// 相比循环调用 Next 摊薄了并发守卫的开销。
	NextBatch(n int) ([]int64, error)

	// NextString 生成十进制字符串形式的 ID，用于无 64 位整数的文本协议。
	NextString() (string, error)

	// Validate 校验 id 是否可能出自本生成器：
	// datacenter/worker 字段一致，且时间戳落在 [epoch, now+skew] 内。
	Validate(id int64) bool

	// State 返回当前生成状态的不可变快照。
	State() State

	// Snapshot 将当前状态写入构造时注入的 Store；未注入时为空操作。
	// 不在生成热路径上调用。
	Snapshot(ctx context.Context) error

	// Close 停止后台快照并执行最后一次 Snapshot。
	Close(ctx context.Context) error
}

// MaxBatchSize NextBatch 单次请求上限（16 个完整序列号窗口），
// 限制守卫的持有时长。
const MaxBatchSize = 1 << 16

// New 创建 ID 生成器。cfg.Guard 决定并发守卫实现，语义完全一致：
// "mutex"（默认）、"none"（调用方保证独占）、"atomic"（无锁 CAS）。
func New(cfg *Config, opts ...Option) (Generator, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidInput, "config_nil")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := Options{Logger: clog.Discard()}
	for _, o := range opts {
		o(&opt)
	}

	clk := opt.Clock
	if clk == nil {
		clk = clock.System()
	}

	// epoch 晚于当前时钟会产生负的时间戳增量
	if cfg.Epoch > clk.Now() {
		return nil, xerrors.WithCode(ErrInvalidInput, "epoch_in_future")
	}

	logger := opt.Logger.With(
		clog.String("component", "snowgen"),
		clog.Int64("datacenter_id", cfg.DatacenterID),
		clog.Int64("worker_id", cfg.WorkerID),
	)

	inst, err := newInstruments(opt.Meter)
	if err != nil {
		return nil, err
	}

	c := &core{
		cfg:    cfg,
		clk:    clk,
		logger: logger,
		store:  opt.Store,
		inst:   inst,
		stopCh: make(chan struct{}),
	}

	seed, err := c.loadState(context.Background())
	if err != nil {
		return nil, err
	}

	var gen Generator
	if cfg.Guard == GuardAtomic {
		gen = newAtomicGenerator(c, seed)
	} else {
		gen = newLockedGenerator(c, seed)
	}

	if cfg.SnapshotIntervalMs > 0 && c.store != nil {
		c.startSnapshotLoop(gen)
	}

	logger.Info("generator created",
		clog.Int64("epoch", cfg.Epoch),
		clog.String("guard", cfg.Guard),
		clog.Bool("persistent", c.store != nil),
	)
	return gen, nil
}

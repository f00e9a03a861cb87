package snowgen

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/layout"
	"github.com/ceyewan/snowgen/store"
	"github.com/ceyewan/snowgen/xerrors"
)

// ========================================
// 共享内核
// ========================================

// core 两种生成器实现共享的依赖与生命周期管理。
type core struct {
	cfg    *Config
	clk    clock.Clock
	logger clog.Logger
	store  store.Store
	inst   *instruments

	stopCh   chan struct{}
	stopOnce sync.Once
}

// loadState 从 Store 恢复快照。加载或解码失败直接拒绝构造，
// 静默从零启动可能重复发号。
func (c *core) loadState(ctx context.Context) (State, error) {
	if c.store == nil {
		return State{SchemaVersion: StateSchemaVersion}, nil
	}

	data, found, err := c.store.Load(ctx)
	if err != nil {
		return State{}, xerrors.Wrapf(ErrStateStore, "load snapshot: %v", err)
	}
	if !found {
		c.logger.Info("no snapshot found, starting fresh")
		return State{SchemaVersion: StateSchemaVersion}, nil
	}

	s, err := UnmarshalState(data)
	if err != nil {
		return State{}, err
	}

	// 快照领先本地时钟说明上次关机后发生了回拨，
	// 保留状态原样恢复，首次 Next 会以回拨错误暴露该事实
	if now := c.clk.Now(); s.LastTimestampMs > now {
		c.logger.Warn("restored snapshot is ahead of wall clock",
			clog.Int64("snapshot_ts", s.LastTimestampMs),
			clog.Int64("now", now),
		)
	}

	c.logger.Info("state restored from snapshot",
		clog.Int64("last_timestamp_ms", s.LastTimestampMs),
		clog.Int64("sequence", s.Sequence),
	)
	return s, nil
}

// persist 将状态快照写入 Store。Store 未注入时为空操作。
func (c *core) persist(ctx context.Context, s State) error {
	if c.store == nil {
		return nil
	}

	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, data); err != nil {
		c.inst.onSnapshotFailure(ctx)
		c.logger.Error("snapshot save failed", clog.Error(err))
		return xerrors.Wrapf(ErrStateStore, "save snapshot: %v", err)
	}

	c.logger.Debug("snapshot saved",
		clog.Int64("last_timestamp_ms", s.LastTimestampMs),
		clog.Int64("sequence", s.Sequence),
	)
	return nil
}

// startSnapshotLoop 启动后台周期快照，Close 时退出。
// 快照失败只记录不中断，下个周期重试。
func (c *core) startSnapshotLoop(gen Generator) {
	interval := time.Duration(c.cfg.SnapshotIntervalMs) * time.Millisecond

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				_ = gen.Snapshot(context.Background())
			}
		}
	}()
}

// shutdown 停止后台快照并落盘最终状态。
func (c *core) shutdown(ctx context.Context, gen Generator) error {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	if c.store == nil {
		return nil
	}
	return gen.Snapshot(ctx)
}

// validate 共享的 ID 归属校验。
func (c *core) validate(id int64) bool {
	return Validate(id, c.cfg.Epoch, c.cfg.DatacenterID, c.cfg.WorkerID,
		c.clk, c.cfg.SkewToleranceMs)
}

// ========================================
// 等待下一毫秒
// ========================================

const (
	waitBackoffInitial = 50 * time.Microsecond
	waitBackoffMax     = time.Millisecond
)

// waitNextMillis 自旋等待时钟越过 last，退避间隔从 50µs 翻倍至 1ms 封顶。
// 等待期间发生回拨同样以回拨错误上报。
func waitNextMillis(clk clock.Clock, last int64, maxWait time.Duration) (int64, error) {
	backoff := waitBackoffInitial
	var waited time.Duration

	for {
		now := clk.Now()
		if now > last {
			return now, nil
		}
		if now < last {
			return 0, newClockDriftError(last - now)
		}
		if waited >= maxWait {
			return 0, xerrors.Wrapf(ErrSequenceWaitTimeout,
				"clock stuck at %d for %v", last, waited)
		}

		time.Sleep(backoff)
		waited += backoff
		if backoff < waitBackoffMax {
			backoff *= 2
		}
	}
}

// ========================================
// 互斥守卫实现
// ========================================

// lockedGenerator 守卫保护的生成器实现，服务 "mutex" 与 "none" 两种守卫。
// 临界区内只读一次时钟并完成状态迁移，保证可线性化。
type lockedGenerator struct {
	*core
	guard Guard

	// 以下字段仅在守卫内访问
	lastTime int64 // 最近发号的 Unix 毫秒时间戳
	sequence int64 // 该毫秒内最后发出的序列号
}

func newLockedGenerator(c *core, seed State) *lockedGenerator {
	return &lockedGenerator{
		core:     c,
		guard:    newGuard(c.cfg.Guard),
		lastTime: seed.LastTimestampMs,
		sequence: seed.Sequence,
	}
}

// next 单次状态迁移，调用方持有守卫。
// 回拨路径不改动任何状态，重试语义由调用方掌握。
func (g *lockedGenerator) next() (int64, error) {
	now := g.clk.Now()

	switch {
	case now < g.lastTime:
		return 0, newClockDriftError(g.lastTime - now)

	case now == g.lastTime:
		if g.sequence >= layout.MaxSequence {
			next, err := waitNextMillis(g.clk, g.lastTime, g.cfg.maxWait())
			if err != nil {
				return 0, err
			}
			g.lastTime = next
			g.sequence = 0
		} else {
			g.sequence++
		}

	default:
		g.lastTime = now
		g.sequence = 0
	}

	return layout.Encode(g.lastTime-g.cfg.Epoch,
		g.cfg.DatacenterID, g.cfg.WorkerID, g.sequence), nil
}

func (g *lockedGenerator) Next() (int64, error) {
	g.guard.Lock()
	id, err := g.next()
	g.guard.Unlock()

	if err != nil {
		g.inst.onError(err)
		return 0, err
	}
	g.inst.onGenerated(1)
	return id, nil
}

func (g *lockedGenerator) NextBatch(n int) ([]int64, error) {
	if n < 1 || n > MaxBatchSize {
		return nil, xerrors.WithCode(ErrInvalidInput, "batch_size_out_of_range")
	}

	ids := make([]int64, 0, n)

	g.guard.Lock()
	for i := 0; i < n; i++ {
		id, err := g.next()
		if err != nil {
			g.guard.Unlock()
			g.inst.onError(err)
			return nil, err
		}
		ids = append(ids, id)
	}
	g.guard.Unlock()

	g.inst.onGenerated(n)
	g.inst.onBatch(n)
	return ids, nil
}

func (g *lockedGenerator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (g *lockedGenerator) Validate(id int64) bool {
	return g.validate(id)
}

func (g *lockedGenerator) State() State {
	g.guard.Lock()
	defer g.guard.Unlock()
	return State{
		SchemaVersion:   StateSchemaVersion,
		LastTimestampMs: g.lastTime,
		Sequence:        g.sequence,
	}
}

func (g *lockedGenerator) Snapshot(ctx context.Context) error {
	return g.persist(ctx, g.State())
}

func (g *lockedGenerator) Close(ctx context.Context) error {
	return g.shutdown(ctx, g)
}

package snowgen

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/ceyewan/snowgen/layout"
	"github.com/ceyewan/snowgen/xerrors"
)

// atomicGenerator 无锁生成器实现。(时间戳增量, 序列号) 打包进单个 uint64：
//
//	高 52 bit 相对纪元的毫秒增量，低 12 bit 序列号
//
// 每次发号对打包字做一次 CAS，失败重读重试。同一毫秒内 CAS 即加一，
// 新毫秒 CAS 写入 (delta, 0)，两条路径都一步完成状态迁移，不存在
// 观察到中间状态的窗口。
type atomicGenerator struct {
	*core
	state atomic.Uint64
}

func packState(tsDelta, seq int64) uint64 {
	return uint64(tsDelta)<<layout.SequenceBits | uint64(seq)
}

func unpackState(word uint64) (tsDelta, seq int64) {
	return int64(word >> layout.SequenceBits), int64(word & layout.MaxSequence)
}

func newAtomicGenerator(c *core, seed State) *atomicGenerator {
	g := &atomicGenerator{core: c}

	// 打包字无法表达纪元之前的时刻，空快照按 (0, 0) 起步：
	// 纪元毫秒的 0 号序列视为已消费，差异仅存在于理论上的首毫秒
	tsDelta := seed.LastTimestampMs - c.cfg.Epoch
	if tsDelta < 0 {
		tsDelta = 0
		seed.Sequence = 0
	}
	g.state.Store(packState(tsDelta, seed.Sequence))
	return g
}

func (g *atomicGenerator) next() (int64, error) {
	for {
		cur := g.state.Load()
		lastDelta, seq := unpackState(cur)
		nowDelta := g.clk.Now() - g.cfg.Epoch

		switch {
		case nowDelta < lastDelta:
			return 0, newClockDriftError(lastDelta - nowDelta)

		case nowDelta == lastDelta:
			if seq >= layout.MaxSequence {
				last := lastDelta + g.cfg.Epoch
				if _, err := waitNextMillis(g.clk, last, g.cfg.maxWait()); err != nil {
					return 0, err
				}
				continue
			}
			// 加一只改低 12 bit，seq 未满时不会进位到时间戳
			if g.state.CompareAndSwap(cur, cur+1) {
				return layout.Encode(lastDelta,
					g.cfg.DatacenterID, g.cfg.WorkerID, seq+1), nil
			}

		default:
			if g.state.CompareAndSwap(cur, packState(nowDelta, 0)) {
				return layout.Encode(nowDelta,
					g.cfg.DatacenterID, g.cfg.WorkerID, 0), nil
			}
		}
	}
}

func (g *atomicGenerator) Next() (int64, error) {
	id, err := g.next()
	if err != nil {
		g.inst.onError(err)
		return 0, err
	}
	g.inst.onGenerated(1)
	return id, nil
}

// NextBatch 一次 CAS 认领一段连续序列号区间，随后在区间内本地编码，
// 区间不足时跨毫秒继续认领。
func (g *atomicGenerator) NextBatch(n int) ([]int64, error) {
	if n < 1 || n > MaxBatchSize {
		return nil, xerrors.WithCode(ErrInvalidInput, "batch_size_out_of_range")
	}

	ids := make([]int64, 0, n)

	for len(ids) < n {
		cur := g.state.Load()
		lastDelta, seq := unpackState(cur)
		nowDelta := g.clk.Now() - g.cfg.Epoch
		remaining := int64(n - len(ids))

		switch {
		case nowDelta < lastDelta:
			err := newClockDriftError(lastDelta - nowDelta)
			g.inst.onError(err)
			return nil, err

		case nowDelta == lastDelta:
			free := layout.MaxSequence - seq
			if free == 0 {
				last := lastDelta + g.cfg.Epoch
				if _, err := waitNextMillis(g.clk, last, g.cfg.maxWait()); err != nil {
					g.inst.onError(err)
					return nil, err
				}
				continue
			}
			claim := min(free, remaining)
			if g.state.CompareAndSwap(cur, cur+uint64(claim)) {
				for i := int64(1); i <= claim; i++ {
					ids = append(ids, layout.Encode(lastDelta,
						g.cfg.DatacenterID, g.cfg.WorkerID, seq+i))
				}
			}

		default:
			claim := min(int64(layout.MaxSequence+1), remaining)
			if g.state.CompareAndSwap(cur, packState(nowDelta, claim-1)) {
				for i := int64(0); i < claim; i++ {
					ids = append(ids, layout.Encode(nowDelta,
						g.cfg.DatacenterID, g.cfg.WorkerID, i))
				}
			}
		}
	}

	g.inst.onGenerated(n)
	g.inst.onBatch(n)
	return ids, nil
}

func (g *atomicGenerator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (g *atomicGenerator) Validate(id int64) bool {
	return g.validate(id)
}

func (g *atomicGenerator) State() State {
	lastDelta, seq := unpackState(g.state.Load())
	return State{
		SchemaVersion:   StateSchemaVersion,
		LastTimestampMs: lastDelta + g.cfg.Epoch,
		Sequence:        seq,
	}
}

func (g *atomicGenerator) Snapshot(ctx context.Context) error {
	return g.persist(ctx, g.State())
}

func (g *atomicGenerator) Close(ctx context.Context) error {
	return g.shutdown(ctx, g)
}

package snowgen

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/layout"
	"github.com/ceyewan/snowgen/store"
)

func TestNew_Unit(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{
			name:        "nil config",
			cfg:         nil,
			expectError: true,
		},
		{
			name:        "minimal valid config",
			cfg:         &Config{DatacenterID: 1, WorkerID: 2},
			expectError: false,
		},
		{
			name:        "zero ids are valid",
			cfg:         &Config{},
			expectError: false,
		},
		{
			name:        "datacenter id above bound",
			cfg:         &Config{DatacenterID: 32},
			expectError: true,
		},
		{
			name:        "negative worker id",
			cfg:         &Config{WorkerID: -1},
			expectError: true,
		},
		{
			name:        "unsupported guard",
			cfg:         &Config{Guard: "spinlock"},
			expectError: true,
		},
		{
			name:        "negative snapshot interval",
			cfg:         &Config{SnapshotIntervalMs: -1},
			expectError: true,
		},
		{
			name:        "atomic guard",
			cfg:         &Config{Guard: GuardAtomic},
			expectError: false,
		},
		{
			name:        "none guard",
			cfg:         &Config{Guard: GuardNone},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.cfg)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if gen == nil {
				t.Error("Expected generator but got nil")
			}
		})
	}
}

func TestNew_EpochInFuture(t *testing.T) {
	clk := clock.NewManual(DefaultEpoch - 1)
	_, err := New(&Config{}, WithClock(clk))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for future epoch, got %v", err)
	}
}

func TestNext_KnownScenario(t *testing.T) {
	clk := clock.NewManual(DefaultEpoch + 123)
	gen, err := New(&Config{DatacenterID: 1, WorkerID: 2}, WithClock(clk))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	id, err := gen.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	f := layout.Decode(id)
	if f.TimestampDelta != 123 {
		t.Errorf("Expected timestamp delta 123, got %d", f.TimestampDelta)
	}
	if f.DatacenterID != 1 {
		t.Errorf("Expected datacenter id 1, got %d", f.DatacenterID)
	}
	if f.WorkerID != 2 {
		t.Errorf("Expected worker id 2, got %d", f.WorkerID)
	}
	if f.Sequence != 0 {
		t.Errorf("Expected sequence 0, got %d", f.Sequence)
	}

	// 同一毫秒内序列号递增
	id2, err := gen.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := layout.Decode(id2).Sequence; got != 1 {
		t.Errorf("Expected sequence 1 in same millisecond, got %d", got)
	}
	if id2 <= id {
		t.Errorf("Expected strictly increasing ids, got %d then %d", id, id2)
	}

	// 新毫秒序列号归零
	clk.Advance(1)
	id3, err := gen.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	f3 := layout.Decode(id3)
	if f3.Sequence != 0 {
		t.Errorf("Expected sequence reset to 0, got %d", f3.Sequence)
	}
	if f3.TimestampDelta != 124 {
		t.Errorf("Expected timestamp delta 124, got %d", f3.TimestampDelta)
	}
}

func TestNext_SequenceWrap(t *testing.T) {
	clk := clock.NewManual(DefaultEpoch + 1000)
	gen, err := New(&Config{DatacenterID: 3, WorkerID: 4}, WithClock(clk))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	// 占满整毫秒的 4096 个序列号
	var last int64
	for i := 0; i <= layout.MaxSequence; i++ {
		last, err = gen.Next()
		if err != nil {
			t.Fatalf("Next failed at sequence %d: %v", i, err)
		}
	}
	if got := layout.Decode(last).Sequence; got != layout.MaxSequence {
		t.Fatalf("Expected sequence %d, got %d", layout.MaxSequence, got)
	}

	// 下一次调用必须等到时钟跨毫秒
	timer := time.AfterFunc(2*time.Millisecond, func() { clk.Advance(1) })
	defer timer.Stop()

	id, err := gen.Next()
	if err != nil {
		t.Fatalf("Next failed after wrap: %v", err)
	}
	f := layout.Decode(id)
	if f.TimestampDelta != 1001 {
		t.Errorf("Expected timestamp delta 1001 after wrap, got %d", f.TimestampDelta)
	}
	if f.Sequence != 0 {
		t.Errorf("Expected sequence 0 after wrap, got %d", f.Sequence)
	}
}

func TestNext_SequenceWaitTimeout(t *testing.T) {
	clk := clock.NewManual(DefaultEpoch + 50)
	gen, err := New(&Config{MaxWaitMs: 5}, WithClock(clk))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	for i := 0; i <= layout.MaxSequence; i++ {
		if _, err := gen.Next(); err != nil {
			t.Fatalf("Next failed at sequence %d: %v", i, err)
		}
	}

	// 时钟冻结，等待只能超时
	_, err = gen.Next()
	if !errors.Is(err, ErrSequenceWaitTimeout) {
		t.Errorf("Expected ErrSequenceWaitTimeout, got %v", err)
	}
}

func TestNext_ClockBackwards(t *testing.T) {
	clk := clock.NewManual(DefaultEpoch + 5000)
	gen, err := New(&Config{DatacenterID: 1, WorkerID: 1}, WithClock(clk))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	if _, err := gen.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	before := gen.State()

	// 回拨 300ms
	clk.Set(DefaultEpoch + 4700)
	_, err = gen.Next()
	if !errors.Is(err, ErrClockBackwards) {
		t.Fatalf("Expected ErrClockBackwards, got %v", err)
	}

	var drift *ClockDriftError
	if !errors.As(err, &drift) {
		t.Fatal("Expected ClockDriftError in chain")
	}
	if drift.Drift != 300*time.Millisecond {
		t.Errorf("Expected drift 300ms, got %v", drift.Drift)
	}

	// 回拨不改动任何状态
	after := gen.State()
	if before != after {
		t.Errorf("Expected state unchanged after drift, got %+v then %+v", before, after)
	}

	// 时钟恢复后正常发号
	clk.Set(DefaultEpoch + 5001)
	id, err := gen.Next()
	if err != nil {
		t.Fatalf("Next failed after clock recovery: %v", err)
	}
	if got := layout.Decode(id).TimestampDelta; got != 5001 {
		t.Errorf("Expected timestamp delta 5001, got %d", got)
	}
}

func TestNextBatch_Unit(t *testing.T) {
	t.Run("invalid sizes", func(t *testing.T) {
		gen, err := New(&Config{})
		if err != nil {
			t.Fatalf("Failed to create generator: %v", err)
		}
		for _, n := range []int{0, -1, MaxBatchSize + 1} {
			if _, err := gen.NextBatch(n); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for n=%d, got %v", n, err)
			}
		}
	})

	t.Run("strictly increasing across millis", func(t *testing.T) {
		clk := clock.NewManual(DefaultEpoch + 10)
		gen, err := New(&Config{DatacenterID: 2, WorkerID: 7}, WithClock(clk))
		if err != nil {
			t.Fatalf("Failed to create generator: %v", err)
		}

		// 跨毫秒的批量请求
		timer := time.AfterFunc(2*time.Millisecond, func() { clk.Advance(1) })
		defer timer.Stop()

		ids, err := gen.NextBatch(5000)
		if err != nil {
			t.Fatalf("NextBatch failed: %v", err)
		}
		if len(ids) != 5000 {
			t.Fatalf("Expected 5000 ids, got %d", len(ids))
		}
		for i := 1; i < len(ids); i++ {
			if ids[i] <= ids[i-1] {
				t.Fatalf("Ids not strictly increasing at index %d: %d then %d",
					i, ids[i-1], ids[i])
			}
		}
	})
}

func TestNextString_Unit(t *testing.T) {
	clk := clock.NewManual(DefaultEpoch + 42)
	gen, err := New(&Config{DatacenterID: 1, WorkerID: 2}, WithClock(clk))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	s, err := gen.NextString()
	if err != nil {
		t.Fatalf("NextString failed: %v", err)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("NextString returned non-decimal %q: %v", s, err)
	}
	if !gen.Validate(id) {
		t.Errorf("Generator rejected its own id %d", id)
	}
}

func TestGenerator_Validate(t *testing.T) {
	gen, err := New(&Config{DatacenterID: 5, WorkerID: 9})
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	id, err := gen.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if !gen.Validate(id) {
		t.Error("Expected own id to validate")
	}
	// 翻转 worker 字段的一位
	if gen.Validate(id ^ (1 << 12)) {
		t.Error("Expected id with flipped worker bit to fail validation")
	}
	if gen.Validate(-1) {
		t.Error("Expected negative id to fail validation")
	}
}

func TestConcurrentUniqueness(t *testing.T) {
	for _, guard := range []string{GuardMutex, GuardAtomic} {
		t.Run(guard, func(t *testing.T) {
			gen, err := New(&Config{DatacenterID: 1, WorkerID: 1, Guard: guard})
			if err != nil {
				t.Fatalf("Failed to create generator: %v", err)
			}

			const goroutines = 8
			const perGoroutine = 2000

			var wg sync.WaitGroup
			results := make(chan int64, goroutines*perGoroutine)

			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						id, err := gen.Next()
						if err != nil {
							t.Errorf("Next failed: %v", err)
							return
						}
						results <- id
					}
				}()
			}
			wg.Wait()
			close(results)

			seen := make(map[int64]struct{}, goroutines*perGoroutine)
			for id := range results {
				if _, dup := seen[id]; dup {
					t.Fatalf("Duplicate id %d", id)
				}
				seen[id] = struct{}{}
			}
			if len(seen) != goroutines*perGoroutine {
				t.Errorf("Expected %d unique ids, got %d",
					goroutines*perGoroutine, len(seen))
			}
		})
	}
}

func TestPersistence_Unit(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot and restore", func(t *testing.T) {
		st := store.NewMemory()
		clk := clock.NewManual(DefaultEpoch + 100)

		gen, err := New(&Config{DatacenterID: 1, WorkerID: 1},
			WithClock(clk), WithStore(st))
		if err != nil {
			t.Fatalf("Failed to create generator: %v", err)
		}
		if _, err := gen.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if err := gen.Close(ctx); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		// 恢复后从快照之后继续发号
		clk.Advance(50)
		gen2, err := New(&Config{DatacenterID: 1, WorkerID: 1},
			WithClock(clk), WithStore(st))
		if err != nil {
			t.Fatalf("Failed to restore generator: %v", err)
		}
		if gen2.State().LastTimestampMs != DefaultEpoch+100 {
			t.Errorf("Expected restored timestamp %d, got %d",
				DefaultEpoch+100, gen2.State().LastTimestampMs)
		}
		id, err := gen2.Next()
		if err != nil {
			t.Fatalf("Next failed after restore: %v", err)
		}
		if got := layout.Decode(id).TimestampDelta; got != 150 {
			t.Errorf("Expected timestamp delta 150, got %d", got)
		}
	})

	t.Run("snapshot ahead of clock surfaces as drift", func(t *testing.T) {
		st := store.NewMemory()
		clk := clock.NewManual(DefaultEpoch + 2000)

		gen, err := New(&Config{}, WithClock(clk), WithStore(st))
		if err != nil {
			t.Fatalf("Failed to create generator: %v", err)
		}
		if _, err := gen.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if err := gen.Close(ctx); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		// 重启后时钟落后于快照：构造成功，首次发号报回拨
		clk.Set(DefaultEpoch + 1500)
		gen2, err := New(&Config{}, WithClock(clk), WithStore(st))
		if err != nil {
			t.Fatalf("Expected construction to succeed, got %v", err)
		}
		if _, err := gen2.Next(); !errors.Is(err, ErrClockBackwards) {
			t.Errorf("Expected ErrClockBackwards, got %v", err)
		}
	})

	t.Run("corrupt snapshot rejects construction", func(t *testing.T) {
		st := store.NewMemory()
		if err := st.Save(ctx, []byte("not msgpack")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		_, err := New(&Config{}, WithStore(st))
		if !errors.Is(err, ErrStateStore) {
			t.Errorf("Expected ErrStateStore, got %v", err)
		}
	})
}

func TestSnapshotLoop_Unit(t *testing.T) {
	st := store.NewMemory()
	gen, err := New(&Config{SnapshotIntervalMs: 10}, WithStore(st))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	if _, err := gen.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if _, found, _ := st.Load(context.Background()); found {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Background snapshot never appeared")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := gen.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close 幂等
	if err := gen.Close(context.Background()); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
}

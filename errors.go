package snowgen

import (
	"fmt"
	"time"

	"github.com/ceyewan/snowgen/xerrors"
)

// ========================================
// 预定义错误
// ========================================

var (
	// ErrInvalidInput 配置或参数非法。
	ErrInvalidInput = xerrors.New("snowgen: invalid input")

	// ErrClockBackwards 检测到时钟回拨。生成器从不静默修正回拨：
	// 状态保持不变，由调用方决定重试或告警。
	ErrClockBackwards = xerrors.New("snowgen: clock moved backwards")

	// ErrSequenceWaitTimeout 序列号耗尽后等待下一毫秒超时，
	// 通常意味着时钟被冻结（容器暂停、调试器挂起）。
	ErrSequenceWaitTimeout = xerrors.New("snowgen: wait for next millisecond timed out")

	// ErrStateStore 状态快照的加载或保存失败。
	ErrStateStore = xerrors.New("snowgen: state store failure")
)

// ClockDriftError 携带回拨幅度的时钟回拨错误，
// errors.Is(err, ErrClockBackwards) 恒为真。
type ClockDriftError struct {
	// Drift 回拨幅度（观测时刻落后于已发号时刻的时长）。
	Drift time.Duration
}

func (e *ClockDriftError) Error() string {
	return fmt.Sprintf("snowgen: clock moved backwards by %v", e.Drift)
}

func (e *ClockDriftError) Unwrap() error {
	return ErrClockBackwards
}

func newClockDriftError(driftMs int64) error {
	return &ClockDriftError{Drift: time.Duration(driftMs) * time.Millisecond}
}

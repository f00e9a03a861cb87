// Package clock 抽象 snowgen 的毫秒级墙钟来源。
//
// Clock 是生成器唯一的非确定性输入。返回值不保证单调：NTP 校正或虚拟机
// 迁移都可能使 Now 回退，回拨的检测与处理由生成引擎负责，时钟只负责读数。
package clock

import (
	"sync/atomic"
	"time"
)

// Clock 毫秒级墙钟。
type Clock interface {
	// Now 返回当前 Unix 毫秒时间戳。
	Now() int64
}

// System 返回基于 time.Now 的系统时钟。
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// Manual 手动推进的时钟，用于测试确定性的时间行为。并发安全。
type Manual struct {
	now atomic.Int64
}

// NewManual 创建一个停在 startMs 的手动时钟。
func NewManual(startMs int64) *Manual {
	m := &Manual{}
	m.now.Store(startMs)
	return m
}

// Now 返回当前设定的毫秒时间戳。
func (m *Manual) Now() int64 {
	return m.now.Load()
}

// Set 将时钟设置为 ms，允许回拨以模拟时钟异常。
func (m *Manual) Set(ms int64) {
	m.now.Store(ms)
}

// Advance 将时钟前进 deltaMs 毫秒。
func (m *Manual) Advance(deltaMs int64) {
	m.now.Add(deltaMs)
}

// Package store 定义生成器状态快照的持久化契约及若干后端实现。
//
// Store 只搬运字节，不理解快照内容；快照的编解码（含版本号）由 snowgen
// 根包负责。Save 由应用在优雅退出或周期快照时调用，绝不在生成热路径上；
// Load 在生成器构造时调用一次。
package store

import (
	"context"
	"sync"
)

// Store 状态快照存储接口。
type Store interface {
	// Save 持久化一份快照，覆盖旧值。
	Save(ctx context.Context, data []byte) error

	// Load 读取最近一次快照。不存在快照时返回 (nil, false, nil)，不视为错误。
	Load(ctx context.Context) ([]byte, bool, error)
}

// Memory 进程内单槽存储，用于测试。并发安全。
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemory 创建空的内存存储。
func NewMemory() *Memory {
	return &Memory{}
}

// Save 持久化快照到内存槽位。
func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}

// Load 读取内存槽位中的快照。
func (m *Memory) Load(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

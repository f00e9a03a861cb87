package allocator

import "context"

// staticAllocator 返回显式配置的 ID，无租约。
type staticAllocator struct {
	workerID int64
}

func newStatic(workerID int64) *staticAllocator {
	return &staticAllocator{workerID: workerID}
}

func (a *staticAllocator) Allocate(ctx context.Context) (int64, error) {
	return a.workerID, nil
}

func (a *staticAllocator) KeepAlive(ctx context.Context) <-chan error {
	return make(chan error)
}

func (a *staticAllocator) Stop() {}

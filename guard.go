package snowgen

import "sync"

// Guard 生成临界区的并发守卫。sync.Mutex 天然满足该接口。
type Guard interface {
	Lock()
	Unlock()
}

// nopGuard 空守卫，用于调用方自行保证独占的场景。
type nopGuard struct{}

func (nopGuard) Lock()   {}
func (nopGuard) Unlock() {}

func newGuard(mode string) Guard {
	if mode == GuardNone {
		return nopGuard{}
	}
	return &sync.Mutex{}
}

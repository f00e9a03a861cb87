package allocator

import (
	"context"
	"net"

	"github.com/ceyewan/snowgen/xerrors"
)

// ipAllocator 从本机 IPv4 地址末段派生 ID，无租约。
// 仅适用于同网段内末段互不相同且不超过 MaxID 的小规模部署，
// 末段取模后可能冲突，生产集群应使用 redis/etcd 驱动。
type ipAllocator struct {
	maxID int
}

func newIP(maxID int) *ipAllocator {
	return &ipAllocator{maxID: maxID}
}

func (a *ipAllocator) Allocate(ctx context.Context) (int64, error) {
	ip, err := localIPv4()
	if err != nil {
		return 0, xerrors.Wrap(err, "allocator: resolve local ip")
	}
	return int64(int(ip[3]) % a.maxID), nil
}

func (a *ipAllocator) KeepAlive(ctx context.Context) <-chan error {
	return make(chan error)
}

func (a *ipAllocator) Stop() {}

// localIPv4 返回本机第一个非 loopback 的 IPv4 地址。
func localIPv4() (net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip := ipnet.IP.To4(); ip != nil {
				return ip, nil
			}
		}
	}
	return nil, xerrors.New("no valid ipv4 address found")
}

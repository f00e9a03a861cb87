package allocator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/xerrors"
)

// etcdAllocator 通过 etcd 租约持有 ID：Grant 租约后以事务 CAS 抢占键，
// 租约自动续期，失效时键随租约删除。
type etcdAllocator struct {
	client *clientv3.Client
	cfg    *Config
	logger clog.Logger

	leaseID  clientv3.LeaseID
	workerID int64
	key      string
	stopCh   chan struct{}
}

func newEtcd(cfg *Config, client *clientv3.Client, logger clog.Logger) *etcdAllocator {
	return &etcdAllocator{
		client: client,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (a *etcdAllocator) Allocate(ctx context.Context) (int64, error) {
	lease, err := a.client.Grant(ctx, int64(a.cfg.TTL))
	if err != nil {
		return 0, xerrors.Wrap(err, "allocator: etcd grant lease")
	}

	value := fmt.Sprintf("host:%d", time.Now().UnixNano())
	offset := rand.Intn(a.cfg.MaxID)

	for i := 0; i < a.cfg.MaxID; i++ {
		id := (offset + i) % a.cfg.MaxID
		key := fmt.Sprintf("%s:%d", a.cfg.KeyPrefix, id)

		// ModRevision == 0 表示键不存在，事务保证创建的原子性
		resp, err := a.client.Txn(ctx).
			If(clientv3.Compare(clientv3.ModRevision(key), "=", 0)).
			Then(clientv3.OpPut(key, value, clientv3.WithLease(lease.ID))).
			Commit()
		if err != nil {
			a.revokeLease(lease.ID)
			a.logger.Error("etcd txn failed", clog.Error(err), clog.String("key", key))
			return 0, xerrors.Wrap(err, "allocator: etcd txn")
		}

		if resp.Succeeded {
			a.leaseID = lease.ID
			a.workerID = int64(id)
			a.key = key

			a.logger.Info("worker id allocated",
				clog.Int64("worker_id", a.workerID),
				clog.String("key", key),
				clog.Int64("lease_id", int64(lease.ID)),
			)
			return a.workerID, nil
		}
	}

	a.revokeLease(lease.ID)
	return 0, xerrors.WithCode(ErrExhausted, "etcd_space_full")
}

func (a *etcdAllocator) KeepAlive(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		kaCh, err := a.client.KeepAlive(ctx, a.leaseID)
		if err != nil {
			a.logger.Error("etcd keep alive failed",
				clog.Error(err),
				clog.Int64("lease_id", int64(a.leaseID)),
			)
			select {
			case errCh <- xerrors.Wrap(err, "allocator: keep alive"):
			default:
			}
			return
		}

		for {
			select {
			case <-a.stopCh:
				return
			case <-ctx.Done():
				return
			case ka, ok := <-kaCh:
				if !ok || ka == nil {
					a.logger.Error("lease expired",
						clog.Int64("lease_id", int64(a.leaseID)),
					)
					select {
					case errCh <- xerrors.WithCode(ErrLeaseExpired, "lease_expired"):
					default:
					}
					return
				}
			}
		}
	}()

	return errCh
}

func (a *etcdAllocator) Stop() {
	close(a.stopCh)

	if a.leaseID != 0 {
		// 撤销租约后关联键自动删除
		a.revokeLease(a.leaseID)
		a.logger.Info("worker id released",
			clog.Int64("worker_id", a.workerID),
			clog.String("key", a.key),
		)
	}
}

func (a *etcdAllocator) revokeLease(id clientv3.LeaseID) {
	if _, err := a.client.Revoke(context.Background(), id); err != nil {
		a.logger.Warn("etcd revoke lease failed", clog.Error(err))
	}
}

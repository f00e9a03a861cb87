package store

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/snowgen/xerrors"
)

// Etcd 基于单个 etcd 键的存储。客户端由调用方注入并负责其生命周期。
type Etcd struct {
	client *clientv3.Client
	key    string
}

// NewEtcd 创建 etcd 存储。
func NewEtcd(client *clientv3.Client, key string) (*Etcd, error) {
	if client == nil {
		return nil, xerrors.New("store: etcd client is nil")
	}
	if key == "" {
		return nil, xerrors.New("store: etcd key is empty")
	}
	return &Etcd{client: client, key: key}, nil
}

// Save 写入快照。
func (e *Etcd) Save(ctx context.Context, data []byte) error {
	if _, err := e.client.Put(ctx, e.key, string(data)); err != nil {
		return xerrors.Wrapf(err, "store: etcd put %s", e.key)
	}
	return nil
}

// Load 读取快照，键不存在时返回 (nil, false, nil)。
func (e *Etcd) Load(ctx context.Context) ([]byte, bool, error) {
	resp, err := e.client.Get(ctx, e.key)
	if err != nil {
		return nil, false, xerrors.Wrapf(err, "store: etcd get %s", e.key)
	}
	if len(resp.Kvs) == 0 {
		return nil, false, nil
	}
	return resp.Kvs[0].Value, true, nil
}

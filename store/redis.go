package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/snowgen/xerrors"
)

// Redis 基于单个 Redis 键的存储。
// 客户端由调用方注入并负责其生命周期，键应包含 (datacenter, worker) 标识，
// 避免多个生成器互相覆盖快照。
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis 创建 Redis 存储。
func NewRedis(client *redis.Client, key string) (*Redis, error) {
	if client == nil {
		return nil, xerrors.New("store: redis client is nil")
	}
	if key == "" {
		return nil, xerrors.New("store: redis key is empty")
	}
	return &Redis{client: client, key: key}, nil
}

// Save 写入快照，不设置过期时间。
func (r *Redis) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return xerrors.Wrapf(err, "store: redis set %s", r.key)
	}
	return nil
}

// Load 读取快照，键不存在时返回 (nil, false, nil)。
func (r *Redis) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, xerrors.Wrapf(err, "store: redis get %s", r.key)
	}
	return data, true, nil
}

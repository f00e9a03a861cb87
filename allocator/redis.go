package allocator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/xerrors"
)

// claimScript 从随机起点环形遍历 ID 空间，原子抢占第一个空闲 ID。
// 随机起点分散并发启动时的键冲突。
const claimScript = `
	local prefix = KEYS[1]
	local value = ARGV[1]
	local ttl = tonumber(ARGV[2])
	local max_id = tonumber(ARGV[3])
	local offset = tonumber(ARGV[4])

	for i = 0, max_id - 1 do
		local id = (offset + i) % max_id
		local key = prefix .. ":" .. id
		if redis.call("SET", key, value, "NX", "EX", ttl) then
			return id
		end
	end
	return -1
`

// redisAllocator 通过带 TTL 的 Redis 键持有 ID，定期 EXPIRE 续约。
type redisAllocator struct {
	client *redis.Client
	cfg    *Config
	logger clog.Logger

	workerID int64
	key      string
	stopCh   chan struct{}
}

func newRedis(cfg *Config, client *redis.Client, logger clog.Logger) *redisAllocator {
	return &redisAllocator{
		client: client,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (a *redisAllocator) Allocate(ctx context.Context) (int64, error) {
	offset := rand.Int63n(int64(a.cfg.MaxID))
	value := fmt.Sprintf("host:%d", time.Now().UnixNano())

	result, err := a.client.Eval(ctx, claimScript,
		[]string{a.cfg.KeyPrefix},
		value, a.cfg.TTL, a.cfg.MaxID, offset,
	).Result()
	if err != nil {
		a.logger.Error("worker id claim failed",
			clog.Error(err),
			clog.String("key_prefix", a.cfg.KeyPrefix),
		)
		return 0, xerrors.Wrap(err, "allocator: redis eval")
	}

	id, ok := result.(int64)
	if !ok || id < 0 {
		return 0, xerrors.WithCode(ErrExhausted, "redis_space_full")
	}

	a.workerID = id
	a.key = fmt.Sprintf("%s:%d", a.cfg.KeyPrefix, id)

	a.logger.Info("worker id allocated",
		clog.Int64("worker_id", id),
		clog.String("key", a.key),
	)
	return id, nil
}

func (a *redisAllocator) KeepAlive(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(time.Duration(a.cfg.TTL/3) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-a.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := a.client.Expire(context.Background(), a.key,
					time.Duration(a.cfg.TTL)*time.Second).Err()
				if err != nil {
					a.logger.Error("keep alive failed",
						clog.Error(err),
						clog.String("key", a.key),
					)
					select {
					case errCh <- xerrors.Wrap(err, "allocator: keep alive"):
					default:
					}
					return
				}
			}
		}
	}()

	return errCh
}

func (a *redisAllocator) Stop() {
	close(a.stopCh)

	if a.key != "" {
		a.client.Del(context.Background(), a.key)
		a.logger.Info("worker id released",
			clog.Int64("worker_id", a.workerID),
			clog.String("key", a.key),
		)
	}
}

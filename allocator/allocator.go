// Package allocator 提供工作节点 ID 的分配能力，是生成器的外部协作组件。
//
// 分配发生且仅发生在进程启动阶段：拿到 ID 后构造生成器，之后身份不再变化。
// redis / etcd 驱动通过租约持有 ID，租约丢失通过 KeepAlive 返回的错误通道
// 上报，由应用决定停止发号还是重新分配后重建生成器。
package allocator

import (
	"context"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/xerrors"
)

var (
	// ErrInvalidConfig 分配器配置无效
	ErrInvalidConfig = xerrors.New("allocator: invalid config")

	// ErrClientNil 驱动所需的客户端未注入
	ErrClientNil = xerrors.New("allocator: client is nil")

	// ErrExhausted ID 空间已被占满
	ErrExhausted = xerrors.New("allocator: no available worker id")

	// ErrLeaseExpired 租约已失效
	ErrLeaseExpired = xerrors.New("allocator: lease expired")
)

// Allocator 工作节点 ID 分配器。
type Allocator interface {
	// Allocate 分配一个 [0, MaxID) 内未被占用的 ID。
	Allocate(ctx context.Context) (int64, error)

	// KeepAlive 启动租约保活，返回错误通道；租约丢失时发送错误并退出。
	// static / ip 驱动返回的通道永不发送。
	KeepAlive(ctx context.Context) <-chan error

	// Stop 停止保活并释放持有的 ID。
	Stop()
}

// Config 分配器配置。
type Config struct {
	// Driver 驱动类型: "static" | "ip" | "redis" | "etcd"
	Driver string `yaml:"driver" json:"driver"`

	// WorkerID Driver="static" 时显式指定的 ID
	WorkerID int64 `yaml:"worker_id" json:"worker_id"`

	// KeyPrefix redis/etcd 键前缀，默认 "snowgen:worker"
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`

	// MaxID ID 空间上界（开区间），默认 32，不得超过位布局允许的 32
	MaxID int `yaml:"max_id" json:"max_id"`

	// TTL 租约秒数，默认 30
	TTL int `yaml:"ttl" json:"ttl"`
}

func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = "static"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "snowgen:worker"
	}
	if c.MaxID <= 0 {
		c.MaxID = 32
	}
	if c.TTL <= 0 {
		c.TTL = 30
	}
}

func (c *Config) validate() error {
	switch c.Driver {
	case "static", "ip", "redis", "etcd":
	default:
		return xerrors.WithCode(ErrInvalidConfig, "unsupported_driver")
	}
	if c.MaxID <= 0 || c.MaxID > 32 {
		return xerrors.WithCode(ErrInvalidConfig, "max_id_out_of_range")
	}
	if c.Driver == "static" && (c.WorkerID < 0 || c.WorkerID >= int64(c.MaxID)) {
		return xerrors.WithCode(ErrInvalidConfig, "worker_id_out_of_range")
	}
	return nil
}

// Option 分配器选项函数。
type Option func(*options)

type options struct {
	logger clog.Logger
	redis  *redis.Client
	etcd   *clientv3.Client
}

// WithLogger 设置 Logger。
func WithLogger(logger clog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRedisClient 注入 Redis 客户端（Driver="redis" 时必需）。
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

// WithEtcdClient 注入 etcd 客户端（Driver="etcd" 时必需）。
func WithEtcdClient(client *clientv3.Client) Option {
	return func(o *options) { o.etcd = client }
}

// New 按 cfg.Driver 创建分配器。
//
// 使用示例:
//
//	alloc, _ := allocator.New(&allocator.Config{Driver: "redis"},
//	    allocator.WithRedisClient(client),
//	    allocator.WithLogger(logger),
//	)
//	workerID, _ := alloc.Allocate(ctx)
//	defer alloc.Stop()
func New(cfg *Config, opts ...Option) (Allocator, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidConfig, "config_nil")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{logger: clog.Discard()}
	for _, o := range opts {
		o(&opt)
	}
	opt.logger = opt.logger.With(clog.String("component", "allocator"))

	switch cfg.Driver {
	case "static":
		return newStatic(cfg.WorkerID), nil
	case "ip":
		return newIP(cfg.MaxID), nil
	case "redis":
		if opt.redis == nil {
			return nil, xerrors.WithCode(ErrClientNil, "redis_client_required")
		}
		return newRedis(cfg, opt.redis, opt.logger), nil
	case "etcd":
		if opt.etcd == nil {
			return nil, xerrors.WithCode(ErrClientNil, "etcd_client_required")
		}
		return newEtcd(cfg, opt.etcd, opt.logger), nil
	default:
		return nil, xerrors.WithCode(ErrInvalidConfig, "unsupported_driver")
	}
}

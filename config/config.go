// Package config 为 snowgen 提供基于 viper 的配置加载能力。
//
// 加载优先级（高到低）：环境变量（SNOWGEN_ 前缀）> .env 文件 > 配置文件。
// 支持 fsnotify 文件变更回调，用于运行时观测配置漂移（生成器身份本身
// 构造后不可变，变更回调只应驱动重建，不应原地修改）。
//
// 基本使用：
//
//	loader := config.New(
//	    config.WithName("snowgen"),
//	    config.WithPaths(".", "/etc/snowgen"),
//	)
//	if err := loader.Load(); err != nil { ... }
//
//	var cfg snowgen.Config
//	_ = loader.Unmarshal("generator", &cfg)
package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/snowgen/xerrors"
)

// Loader 配置加载器。
type Loader struct {
	v    *viper.Viper
	opts *options
}

// Option 加载器选项函数。
type Option func(*options)

type options struct {
	name      string
	fileType  string
	paths     []string
	envPrefix string
	dotEnv    bool
}

// WithName 设置配置文件名（不含扩展名），默认 "snowgen"。
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithFileType 设置配置文件类型，默认 "yaml"。
func WithFileType(t string) Option {
	return func(o *options) { o.fileType = t }
}

// WithPaths 设置配置文件搜索路径，默认当前目录。
func WithPaths(paths ...string) Option {
	return func(o *options) { o.paths = paths }
}

// WithEnvPrefix 设置环境变量前缀，默认 "SNOWGEN"。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithDotEnv 启用 .env 文件加载。
func WithDotEnv() Option {
	return func(o *options) { o.dotEnv = true }
}

// New 创建配置加载器。
func New(opts ...Option) *Loader {
	o := &options{
		name:      "snowgen",
		fileType:  "yaml",
		paths:     []string{"."},
		envPrefix: "SNOWGEN",
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Loader{v: viper.New(), opts: o}
}

// Load 从所有来源加载配置。配置文件缺失不是错误，环境变量仍然生效。
func (l *Loader) Load() error {
	l.v.SetConfigName(l.opts.name)
	l.v.SetConfigType(l.opts.fileType)
	for _, p := range l.opts.paths {
		l.v.AddConfigPath(p)
	}

	// 环境变量优先级最高，先行注册
	l.v.SetEnvPrefix(l.opts.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.opts.dotEnv {
		// .env 缺失是正常情况
		_ = godotenv.Load()
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return xerrors.Wrapf(err, "config: read %s", l.opts.name)
		}
	}
	return nil
}

// Unmarshal 将 key 下的配置解码到 out。key 为空时解码整个配置树。
func (l *Loader) Unmarshal(key string, out any) error {
	if key == "" {
		if err := l.v.Unmarshal(out); err != nil {
			return xerrors.Wrap(err, "config: unmarshal root")
		}
		return nil
	}
	if err := l.v.UnmarshalKey(key, out); err != nil {
		return xerrors.Wrapf(err, "config: unmarshal %s", key)
	}
	return nil
}

// GetString 读取字符串配置项。
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt64 读取整数配置项。
func (l *Loader) GetInt64(key string) int64 {
	return l.v.GetInt64(key)
}

// Watch 注册配置文件变更回调并开始监听。
func (l *Loader) Watch(fn func(e fsnotify.Event)) {
	l.v.OnConfigChange(fn)
	l.v.WatchConfig()
}

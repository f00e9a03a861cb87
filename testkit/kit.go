// Package testkit 提供集成测试共用的辅助设施：测试日志器、随机键名，
// 以及按环境变量连接 Redis/etcd 的客户端构造。外部组件不可达时测试跳过
// 而非失败，保证单元测试在无依赖环境下可独立运行。
package testkit

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/ceyewan/snowgen/clog"
)

// NewLogger 创建输出到 stderr 的 debug 级日志器，便于排查集成测试失败。
func NewLogger(t *testing.T) clog.Logger {
	t.Helper()
	logger, err := clog.New(&clog.Config{
		Level:  "debug",
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}
	return logger
}

// NewKey 生成带前缀的随机键名，隔离并行测试间的外部存储状态。
func NewKey(t *testing.T, prefix string) string {
	t.Helper()
	return fmt.Sprintf("%s:test:%s", prefix, uuid.NewString()[:8])
}

package testkit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetRedisClient 连接 SNOWGEN_TEST_REDIS_ADDR（默认 localhost:6379）指定的
// Redis。连接失败时跳过当前测试，测试结束自动关闭客户端。
func GetRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("SNOWGEN_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		client.Close()
	})
	return client
}

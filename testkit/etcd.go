package testkit

import (
	"context"
	"os"
	"testing"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// GetEtcdClient 连接 SNOWGEN_TEST_ETCD_ENDPOINT（默认 localhost:2379）指定的
// etcd。连接失败时跳过当前测试，测试结束自动关闭客户端。
func GetEtcdClient(t *testing.T) *clientv3.Client {
	t.Helper()

	endpoint := os.Getenv("SNOWGEN_TEST_ETCD_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:2379"
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{endpoint},
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Skipf("etcd client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Status(ctx, endpoint); err != nil {
		client.Close()
		t.Skipf("etcd not available at %s: %v", endpoint, err)
	}

	t.Cleanup(func() {
		client.Close()
	})
	return client
}

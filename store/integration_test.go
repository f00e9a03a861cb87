package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/snowgen/store"
	"github.com/ceyewan/snowgen/testkit"
)

func TestRedis_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testkit.GetRedisClient(t)
	key := testkit.NewKey(t, "snowgen:snapshot")
	t.Cleanup(func() {
		client.Del(context.Background(), key)
	})

	s, err := store.NewRedis(client, key)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found, "expected no snapshot before first save")

	payload := []byte{0x01, 0x02, 0x03}
	require.NoError(t, s.Save(ctx, payload))

	data, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, data)

	// 覆盖旧快照
	require.NoError(t, s.Save(ctx, []byte{0xff}))
	data, _, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, data)
}

func TestEtcd_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := testkit.GetEtcdClient(t)
	key := testkit.NewKey(t, "snowgen/snapshot")
	t.Cleanup(func() {
		client.Delete(context.Background(), key)
	})

	s, err := store.NewEtcd(client, key)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found, "expected no snapshot before first save")

	payload := []byte("snapshot-bytes")
	require.NoError(t, s.Save(ctx, payload))

	data, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, data)
}

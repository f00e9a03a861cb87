package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestGorm_Unit(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)

	t.Run("nil db rejected", func(t *testing.T) {
		_, err := NewGorm(nil, "dc0-wk0")
		assert.Error(t, err)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewGorm(db, "")
		assert.Error(t, err)
	})

	s, err := NewGorm(db, "dc1-wk2")
	require.NoError(t, err)

	t.Run("missing row reports not found", func(t *testing.T) {
		data, found, err := s.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("save then load roundtrips", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, []byte{0xAB, 0xCD}))
		data, found, err := s.Load(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte{0xAB, 0xCD}, data)
	})

	t.Run("upsert overwrites same name", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, []byte{0x01}))
		data, _, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01}, data)
	})

	t.Run("different names are isolated", func(t *testing.T) {
		other, err := NewGorm(db, "dc1-wk3")
		require.NoError(t, err)
		_, found, err := other.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

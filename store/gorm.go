package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ceyewan/snowgen/xerrors"
)

// snapshotRow 快照表行，每个生成器一行，以 name 为主键。
type snapshotRow struct {
	Name      string `gorm:"primaryKey;size:128"`
	Data      []byte
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string {
	return "snowgen_snapshots"
}

// Gorm 基于关系库单行记录的存储，适合已有数据库、不想引入额外组件的部署。
// 任何 gorm 支持的驱动均可；测试使用 sqlite。
type Gorm struct {
	db   *gorm.DB
	name string
}

// NewGorm 创建数据库存储并确保快照表存在。
// name 标识生成器（建议包含 datacenter/worker），同名记录互相覆盖。
func NewGorm(db *gorm.DB, name string) (*Gorm, error) {
	if db == nil {
		return nil, xerrors.New("store: gorm db is nil")
	}
	if name == "" {
		return nil, xerrors.New("store: snapshot name is empty")
	}
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, xerrors.Wrap(err, "store: migrate snapshot table")
	}
	return &Gorm{db: db, name: name}, nil
}

// Save 以 upsert 方式写入快照行。
func (g *Gorm) Save(ctx context.Context, data []byte) error {
	row := snapshotRow{Name: g.name, Data: data, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return xerrors.Wrapf(err, "store: upsert snapshot %s", g.name)
	}
	return nil
}

// Load 读取快照行，记录不存在时返回 (nil, false, nil)。
func (g *Gorm) Load(ctx context.Context) ([]byte, bool, error) {
	var row snapshotRow
	err := g.db.WithContext(ctx).First(&row, "name = ?", g.name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, xerrors.Wrapf(err, "store: load snapshot %s", g.name)
	}
	return row.Data, true, nil
}

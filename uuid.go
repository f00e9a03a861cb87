package snowgen

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ceyewan/snowgen/xerrors"
)

// ========================================
// UUID 辅助
// ========================================
//
// 无需协调 worker 身份的场景（trace ID、幂等键）用 UUID 更合适，
// 与 Snowflake ID 并列提供。

// NewUUIDV7 生成 UUID v7，时间有序，适合做数据库主键。
func NewUUIDV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", xerrors.Wrap(err, "snowgen: generate uuid v7")
	}
	return id.String(), nil
}

// NewUUIDV4 生成完全随机的 UUID v4。
func NewUUIDV4() string {
	return uuid.NewString()
}

// NewCompactUUID 生成去掉连字符的 32 字符 UUID v4。
func NewCompactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

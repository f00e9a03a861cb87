// Package layout 定义 snowgen 标识符的规范位布局，并提供纯函数的编解码。
//
// 64 位标识符从高位到低位：
//
//	1 bit  保留位（恒为 0，保证 int64 非负）
//	41 bit 毫秒时间戳增量（相对 epoch，约 69 年）
//	5 bit  数据中心 ID
//	5 bit  工作节点 ID
//	12 bit 毫秒内序列号
//
// 编解码不做范围校验，调用方在构造期完成校验；热路径依赖既有不变量。
package layout

import "github.com/ceyewan/snowgen/xerrors"

const (
	// TimestampBits 时间戳增量位宽
	TimestampBits = 41
	// DatacenterBits 数据中心 ID 位宽
	DatacenterBits = 5
	// WorkerBits 工作节点 ID 位宽
	WorkerBits = 5
	// SequenceBits 序列号位宽
	SequenceBits = 12
)

const (
	// MaxTimestampDelta 时间戳增量上限 (2^41 - 1)
	MaxTimestampDelta = (1 << TimestampBits) - 1
	// MaxDatacenterID 数据中心 ID 上限
	MaxDatacenterID = (1 << DatacenterBits) - 1
	// MaxWorkerID 工作节点 ID 上限
	MaxWorkerID = (1 << WorkerBits) - 1
	// MaxSequence 序列号上限
	MaxSequence = (1 << SequenceBits) - 1
)

const (
	timestampShift  = DatacenterBits + WorkerBits + SequenceBits // 22
	datacenterShift = WorkerBits + SequenceBits                  // 17
	workerShift     = SequenceBits                               // 12
)

// ErrOutOfRange 字段超出位宽范围
var ErrOutOfRange = xerrors.New("layout: field out of range")

// Fields 标识符的四个逻辑字段。
type Fields struct {
	TimestampDelta int64
	DatacenterID   int64
	WorkerID       int64
	Sequence       int64
}

// Encode 将四个字段按固定位移组合为标识符。纯函数，无副作用。
func Encode(tsDelta, dcID, workerID, seq int64) int64 {
	return tsDelta<<timestampShift |
		dcID<<datacenterShift |
		workerID<<workerShift |
		seq
}

// Decode 将标识符拆解为四个逻辑字段，是 Encode 的逆运算。
func Decode(id int64) Fields {
	return Fields{
		TimestampDelta: id >> timestampShift & MaxTimestampDelta,
		DatacenterID:   id >> datacenterShift & MaxDatacenterID,
		WorkerID:       id >> workerShift & MaxWorkerID,
		Sequence:       id & MaxSequence,
	}
}

// Validate 校验四个字段是否均在各自位宽范围内。
// 仅用于构造期校验；热路径不调用。
func Validate(tsDelta, dcID, workerID, seq int64) error {
	if tsDelta < 0 || tsDelta > MaxTimestampDelta {
		return xerrors.WithCode(ErrOutOfRange, "timestamp_delta")
	}
	if dcID < 0 || dcID > MaxDatacenterID {
		return xerrors.WithCode(ErrOutOfRange, "datacenter_id")
	}
	if workerID < 0 || workerID > MaxWorkerID {
		return xerrors.WithCode(ErrOutOfRange, "worker_id")
	}
	if seq < 0 || seq > MaxSequence {
		return xerrors.WithCode(ErrOutOfRange, "sequence")
	}
	return nil
}

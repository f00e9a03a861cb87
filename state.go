package snowgen

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/snowgen/xerrors"
)

// StateSchemaVersion 快照编码的当前版本号，字段变更时递增。
const StateSchemaVersion uint8 = 1

// State 生成器状态的不可变快照，msgpack 编码后写入 Store。
type State struct {
	// SchemaVersion 编码版本号，解码时校验。
	SchemaVersion uint8 `msgpack:"v"`
	// LastTimestampMs 最近一次发号的毫秒时间戳（Unix 毫秒，非纪元增量）。
	LastTimestampMs int64 `msgpack:"ts"`
	// Sequence 该毫秒内最后发出的序列号。
	Sequence int64 `msgpack:"seq"`
}

// Marshal 编码为 msgpack 字节串。
func (s State) Marshal() ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, xerrors.Wrap(err, "snowgen: marshal state")
	}
	return data, nil
}

// UnmarshalState 解码快照并校验版本号。
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return State{}, xerrors.Wrapf(ErrStateStore, "corrupt snapshot: %v", err)
	}
	if s.SchemaVersion != StateSchemaVersion {
		return State{}, xerrors.Wrapf(ErrStateStore,
			"unsupported snapshot schema version %d", s.SchemaVersion)
	}
	return s, nil
}

package snowgen

import (
	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/layout"
)

// Validate 判断 id 是否可能出自给定身份的生成器：非负、datacenter 与
// worker 字段一致、时间戳不领先 clk 超过 skewToleranceMs 毫秒。
//
// 这是结构校验而非真伪证明，伪造的合法结构无法被识别；
// 用于路由前的快速拒绝与调试时的归属排查。
func Validate(id, epoch, datacenterID, workerID int64, clk clock.Clock, skewToleranceMs int64) bool {
	if id < 0 {
		return false
	}

	f := layout.Decode(id)
	if f.DatacenterID != datacenterID || f.WorkerID != workerID {
		return false
	}

	// 增量解码后必然非负，下界 epoch 无需再查
	ts := epoch + f.TimestampDelta
	return ts <= clk.Now()+skewToleranceMs
}

// Timestamp 从 id 还原生成时刻的 Unix 毫秒时间戳。
func Timestamp(id, epoch int64) int64 {
	return epoch + layout.Decode(id).TimestampDelta
}

package interfaces

import "github.com/dep2p/go-audiomgr/pkg/types"

// FormatChooser 连接格式选择策略
//
// 当一跳存在多个可行格式时，返回按优先级排序的候选子集。
// 返回空列表表示该跳不可用。
type FormatChooser interface {
	ConnectionFormatChoice(sourceID types.SourceID, sinkID types.SinkID, candidates []types.ConnectionFormat) []types.ConnectionFormat
}

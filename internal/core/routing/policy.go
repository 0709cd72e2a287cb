package routing

import (
	"slices"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              格式选择策略
// ============================================================================

var _ pkgif.FormatChooser = LowestIndexChooser{}

// LowestIndexChooser 按音源格式列表的原始顺序选择
type LowestIndexChooser struct{}

// ConnectionFormatChoice 原样返回候选
func (LowestIndexChooser) ConnectionFormatChoice(_ types.SourceID, _ types.SinkID, candidates []types.ConnectionFormat) []types.ConnectionFormat {
	return candidates
}

// orderCandidates 调用策略并把结果限制在候选集合内
func orderCandidates(chooser pkgif.FormatChooser, sourceID types.SourceID, sinkID types.SinkID, candidates []types.ConnectionFormat) []types.ConnectionFormat {
	if len(candidates) <= 1 || chooser == nil {
		return candidates
	}
	choice := chooser.ConnectionFormatChoice(sourceID, sinkID, append([]types.ConnectionFormat(nil), candidates...))

	out := make([]types.ConnectionFormat, 0, len(choice))
	for _, f := range choice {
		if slices.Contains(candidates, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

package routing

import "github.com/dep2p/go-audiomgr/pkg/types"

// AllowedFormatsFromConvMatrix 展开转换矩阵中允许的格式对
//
// 矩阵按音宿优先排列：matrix[sinkIdx*len(sourceFormats)+srcIdx]。
// 外层遍历音宿下标、内层遍历音源下标，每个 true 条目向两个输出各追加一项，
// 两个输出等长且一一对应。尺寸不符时返回 ok=false 与空输出。
func AllowedFormatsFromConvMatrix(matrix []bool, sourceFormats, sinkFormats []types.ConnectionFormat) (outSource, outSink []types.ConnectionFormat, ok bool) {
	if len(matrix) != len(sourceFormats)*len(sinkFormats) {
		return nil, nil, false
	}

	outSource = []types.ConnectionFormat{}
	outSink = []types.ConnectionFormat{}
	for sinkIdx, sinkFormat := range sinkFormats {
		for srcIdx, srcFormat := range sourceFormats {
			if matrix[sinkIdx*len(sourceFormats)+srcIdx] {
				outSource = append(outSource, srcFormat)
				outSink = append(outSink, sinkFormat)
			}
		}
	}
	return outSource, outSink, true
}

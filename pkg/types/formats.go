package types

import (
	"fmt"
	"slices"
)

// ============================================================================
//                              ConnectionFormat - 连接格式
// ============================================================================

// ConnectionFormat 连接格式
type ConnectionFormat uint16

const (
	// FormatUnknown 未知格式
	FormatUnknown ConnectionFormat = iota
	// FormatMono 单声道
	FormatMono
	// FormatStereo 立体声
	FormatStereo
	// FormatAnalog 模拟
	FormatAnalog
	// FormatAuto 自动协商
	FormatAuto
)

// String 返回连接格式的字符串表示
func (f ConnectionFormat) String() string {
	switch f {
	case FormatMono:
		return "MONO"
	case FormatStereo:
		return "STEREO"
	case FormatAnalog:
		return "ANALOG"
	case FormatAuto:
		return "AUTO"
	case FormatUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("FORMAT(%d)", uint16(f))
	}
}

// ParseConnectionFormat 解析连接格式名称
func ParseConnectionFormat(s string) (ConnectionFormat, error) {
	switch s {
	case "MONO", "mono":
		return FormatMono, nil
	case "STEREO", "stereo":
		return FormatStereo, nil
	case "ANALOG", "analog":
		return FormatAnalog, nil
	case "AUTO", "auto":
		return FormatAuto, nil
	}
	return FormatUnknown, fmt.Errorf("%w: connection format %q", ErrNonExistent, s)
}

// IntersectFormats 返回 a 中同时出现在 b 中的格式，保持 a 的顺序
func IntersectFormats(a, b []ConnectionFormat) []ConnectionFormat {
	var out []ConnectionFormat
	for _, f := range a {
		if slices.Contains(b, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

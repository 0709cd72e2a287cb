package types

import "strconv"

// ============================================================================
//                              实体 ID
// ============================================================================

// DynamicIDBoundary 动态 ID 起点
//
// 低于该值的 ID 为静态 ID，由注册方显式指定；
// 以 0 注册的实体由存储从该值开始分配。
const DynamicIDBoundary = 100

// DomainID 域标识
type DomainID uint16

// SourceID 音源标识
type SourceID uint16

// SinkID 音宿标识
type SinkID uint16

// GatewayID 网关标识
type GatewayID uint16

// ConverterID 转换器标识
type ConverterID uint16

// ConnectionID 连接标识
type ConnectionID uint16

// String 返回域 ID 的字符串表示
func (id DomainID) String() string { return strconv.Itoa(int(id)) }

// String 返回音源 ID 的字符串表示
func (id SourceID) String() string { return strconv.Itoa(int(id)) }

// String 返回音宿 ID 的字符串表示
func (id SinkID) String() string { return strconv.Itoa(int(id)) }

// IsStatic 是否为静态 ID
func IsStatic(id uint16) bool {
	return id != 0 && id < DynamicIDBoundary
}

// Package types 定义音频路由核心的公共类型
//
// 本文件定义实体存储的变更事件，路由器订阅后标记图为过期。
package types

import "time"

// ============================================================================
//                              变更事件
// ============================================================================

// EntityKind 实体类别
type EntityKind int

const (
	// EntityDomain 域
	EntityDomain EntityKind = iota + 1
	// EntitySource 音源
	EntitySource
	// EntitySink 音宿
	EntitySink
	// EntityGateway 网关
	EntityGateway
	// EntityConverter 转换器
	EntityConverter
	// EntityConnection 连接
	EntityConnection
)

// String 返回实体类别的字符串表示
func (k EntityKind) String() string {
	switch k {
	case EntityDomain:
		return "domain"
	case EntitySource:
		return "source"
	case EntitySink:
		return "sink"
	case EntityGateway:
		return "gateway"
	case EntityConverter:
		return "converter"
	case EntityConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// ChangeOp 变更操作
type ChangeOp int

const (
	// OpInsert 插入
	OpInsert ChangeOp = iota + 1
	// OpRemove 移除
	OpRemove
	// OpUpdate 更新
	OpUpdate
)

// EvtTopologyChanged 拓扑变更事件
//
// 域、音源、音宿、网关、转换器的插入与移除都会发出该事件。
type EvtTopologyChanged struct {
	Kind EntityKind
	ID   uint16
	Op   ChangeOp
	Time time.Time
}

// EvtConnectionChanged 连接变更事件
type EvtConnectionChanged struct {
	ConnectionID ConnectionID
	State        ConnectionState
	Op           ChangeOp
	Time         time.Time
}

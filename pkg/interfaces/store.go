package interfaces

import "github.com/dep2p/go-audiomgr/pkg/types"

// ============================================================================
//                              EntityStore - 实体存储
// ============================================================================

// TopologyReader 拓扑只读视图，路由器构图时使用
type TopologyReader interface {
	// ListDomains 按 ID 升序返回所有域
	ListDomains() []types.Domain

	// ListSources 按 ID 升序返回所有音源
	ListSources() []types.Source

	// ListSinks 按 ID 升序返回所有音宿
	ListSinks() []types.Sink

	// ListGateways 按 ID 升序返回所有网关
	ListGateways() []types.Gateway

	// ListConverters 按 ID 升序返回所有转换器
	ListConverters() []types.Converter

	// GetSource 查询音源，未知时返回 ErrNonExistent
	GetSource(id types.SourceID) (types.Source, error)

	// GetSink 查询音宿，未知时返回 ErrNonExistent
	GetSink(id types.SinkID) (types.Sink, error)
}

// ConnectionStore 连接记录
type ConnectionStore interface {
	// EnterConnection 写入 reserved 连接，ID 为 0 时由存储分配
	EnterConnection(c types.Connection) (types.ConnectionID, error)

	// ChangeConnectionFinal 将 reserved 连接提升为 final
	ChangeConnectionFinal(id types.ConnectionID) error

	// RemoveConnection 移除连接（reserved 或 final）
	RemoveConnection(id types.ConnectionID) error

	// GetConnection 查询连接
	GetConnection(id types.ConnectionID) (types.Connection, error)

	// ListConnections 返回 final 连接
	ListConnections() []types.Connection

	// ListConnectionsReserved 返回 reserved 连接
	ListConnectionsReserved() []types.Connection
}

// EntityStore 实体存储
//
// 每次实体变更都通过事件总线发出 types.EvtTopologyChanged 或
// types.EvtConnectionChanged。
type EntityStore interface {
	TopologyReader
	ConnectionStore

	EnterDomain(d types.Domain) (types.DomainID, error)
	EnterSource(s types.Source) (types.SourceID, error)
	EnterSink(s types.Sink) (types.SinkID, error)
	EnterGateway(g types.Gateway) (types.GatewayID, error)
	EnterConverter(c types.Converter) (types.ConverterID, error)

	RemoveDomain(id types.DomainID) error
	RemoveSource(id types.SourceID) error
	RemoveSink(id types.SinkID) error
	RemoveGateway(id types.GatewayID) error
	RemoveConverter(id types.ConverterID) error

	GetDomain(id types.DomainID) (types.Domain, error)

	ChangeSinkVolume(id types.SinkID, v types.Volume) error
	ChangeSourceVolume(id types.SourceID, v types.Volume) error
	ChangeSourceState(id types.SourceID, s types.SourceState) error
	ChangeSinkSoundProperties(id types.SinkID, props []types.SoundProperty) error
	ChangeSourceSoundProperties(id types.SourceID, props []types.SoundProperty) error
}

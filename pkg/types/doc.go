// Package types 定义音频路由核心的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
// 基础类型:
//   - ids.go      - DomainID, SourceID, SinkID, GatewayID, ConverterID, ConnectionID
//   - formats.go  - ConnectionFormat 连接格式
//   - enums.go    - DomainState, SourceState, HandleType, ConnectionState, RampType
//   - errors.go   - 错误分类（OK / NON_EXISTENT / NOT_POSSIBLE / ABORTED / UNKNOWN）
//
// 实体类型:
//   - records.go  - Domain, Source, Sink, Gateway, Converter, Connection, SoundProperty
//   - route.go    - RoutingElement, Route
//   - handle.go   - Handle 异步操作句柄
//
// 事件类型:
//   - events.go   - 实体存储变更事件（EvtTopologyChanged, EvtConnectionChanged）
//
// # 所有权
//
// Source/Sink 等记录由实体存储持有，路由器图节点只引用其 ID。
// Route 每次查询新建，归调用方所有。
package types

// Package entitystore 实现内存实体存储
//
// 存储域、音源、音宿、网关、转换器与连接记录。每次变更都通过事件总线
// 发出 types.EvtTopologyChanged 或 types.EvtConnectionChanged，路由器
// 据此判定路由图是否过期。
//
// # ID 分配
//
// 以 ID 0 写入的实体由存储分配动态 ID（从 types.DynamicIDBoundary 起，
// 连接从 1 起）；显式 ID 只要未被占用即被采用。
//
// # 引用完整性
//
// 音源、音宿、转换器必须引用已存在的域；网关与转换器的两端必须已注册；
// 连接的两端必须已注册。网关与转换器的转换矩阵尺寸必须等于
// len(SourceFormats)*len(SinkFormats)。
//
// # 并发安全
//
// 所有读写由一把 RWMutex 保护；列表方法返回按 ID 排序的深拷贝。
package entitystore

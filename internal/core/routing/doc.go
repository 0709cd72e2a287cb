// Package routing 实现音频路由搜索
//
// Router 把实体存储的快照转换成一张有向图：
//
//	音源节点 --直连--> 音宿节点      （同域，格式交集非空）
//	网关/转换器的音宿 --转换--> 其音源（转换矩阵至少允许一对格式）
//
// 一条路由是从查询音源到查询音宿的交替路径，每一跳（直连边）选定一个
// 连接格式，相邻两跳之间的格式必须满足网关或转换器的转换矩阵。
//
// # 搜索
//
// 按跳数逐层加深的深度优先枚举简单路径，结果按跳数从短到长排列，
// 收集到 maxPaths 条后停止。进入新域前由 ShouldGoInDomain 判断是否
// 允许重入该域：
//
//	allow = (visited 非空 且 candidate == visited 最后一个)
//	        或 count(candidate, visited) <= maxCycles
//
// maxCycles 为负数表示不限制。
//
// # 图的生命周期
//
// Router 订阅 types.EvtTopologyChanged，事件到达即标记图为脏。
// Load 重建图并原子替换；并发查询始终看到完整的某一版本。
// 配置 AutoReload 时，GetRoute 在图脏时先执行 Load。
package routing

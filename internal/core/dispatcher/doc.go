// Package dispatcher 把逻辑操作下发给域插件并处理确认
//
// 每个操作（connect、disconnect、设置音量、音源状态、声音属性）：
//
//  1. 同步校验：实体存在、插件已注册、准入未满。失败时不创建句柄或连接
//  2. connect 先写入 reserved 连接
//  3. 分配句柄（记录插件所属域与确认时要写回的数据）
//  4. 不持锁调用插件的 AsyncX；同步失败则释放句柄并回滚
//
// 确认在插件自己的执行上下文中到达：
//
//	首次确认      终结句柄、写回状态、回调监听器
//	重复/迟到确认  不改变任何状态，监听器收到 Stale=true
//
// 取消是建议性的：Abort 只转发一次，句柄在确认到达前保持活跃。
// 取消后收到成功确认，连接仍然生效。
package dispatcher

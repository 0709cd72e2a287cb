// Package eventbus 实现进程内事件总线
//
// 实体存储通过总线发布变更事件，路由器订阅后在每次 Load 前排空，
// 以此替代存储对路由器的同步回调：
//
//	bus := eventbus.NewBus()
//
//	sub, _ := bus.Subscribe(new(types.EvtTopologyChanged))
//	defer sub.Close()
//
//	em, _ := bus.Emitter(new(types.EvtTopologyChanged))
//	defer em.Close()
//	em.Emit(types.EvtTopologyChanged{Kind: types.EntitySink, ID: 12, Op: types.OpInsert})
//
// # 投递语义
//
// Emit 从不阻塞发布方：订阅缓冲区满时事件被丢弃并计入 Dropped()。
// 对于"图已过期"这类幂等信号，丢弃不影响正确性，因为只要通道中
// 还有任一事件，订阅方就会重建。
//
// # 并发安全
//
//   - 订阅/取消订阅：RWMutex 保护类型节点表
//   - 发射器引用计数：atomic.Int32
//   - 通道关闭：closeOnce 防止重复，关闭前先从节点摘除
package eventbus

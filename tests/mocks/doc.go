// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockPlugin: 模拟 interfaces.RoutingPlugin，记录每次下发并支持注入同步错误
//   - MockAckListener: 模拟 interfaces.AckListener，按到达顺序记录确认
//   - MockEventBus: 模拟 interfaces.EventBus，可观察订阅与丢弃
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 记录调用历史，便于验证测试行为
//
// # 使用示例
//
//	func TestConnect(t *testing.T) {
//	    plugin := mocks.NewMockPlugin()
//	    plugin.AsyncConnectFunc = func(h types.Handle, connID types.ConnectionID,
//	        src types.SourceID, sink types.SinkID, f types.ConnectionFormat) error {
//	        return types.ErrNotPossible
//	    }
//	    ...
//	    if plugin.CallCount(mocks.MethodConnect) != 1 {
//	        t.Error("expected one AsyncConnect call")
//	    }
//	}
package mocks

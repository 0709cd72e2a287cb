package mocks

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-audiomgr/pkg/interfaces"
)

// MockEventBus 模拟 EventBus 接口实现
//
// 用于测试需要事件总线依赖的组件。缓冲区满时事件被丢弃并计入订阅的 Dropped。
type MockEventBus struct {
	mu sync.RWMutex

	// 存储
	subscriptions map[reflect.Type][]*MockSubscription

	// 可覆盖的方法
	SubscribeFunc func(eventType any, opts ...interfaces.SubscriptionOpt) (interfaces.Subscription, error)
	EmitterFunc   func(eventType any, opts ...interfaces.EmitterOpt) (interfaces.Emitter, error)

	// 调用记录
	SubscribeCalls []any
	EmitterCalls   []any
}

// MockSubscription 模拟 Subscription 接口实现
type MockSubscription struct {
	eventType reflect.Type
	eventCh   chan any
	closed    bool
	dropped   atomic.Int64
	mu        sync.RWMutex
	bus       *MockEventBus
}

// MockEmitter 模拟 Emitter 接口实现
type MockEmitter struct {
	eventType any
	closed    bool
	mu        sync.RWMutex
	bus       *MockEventBus
}

// NewMockEventBus 创建 MockEventBus
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions: make(map[reflect.Type][]*MockSubscription),
	}
}

// Subscribe 订阅指定类型的事件
func (m *MockEventBus) Subscribe(eventType any, opts ...interfaces.SubscriptionOpt) (interfaces.Subscription, error) {
	m.mu.Lock()
	m.SubscribeCalls = append(m.SubscribeCalls, eventType)
	m.mu.Unlock()

	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(eventType, opts...)
	}

	settings := &interfaces.SubscriptionSettings{Buffer: 16}
	for _, opt := range opts {
		opt(settings)
	}

	sub := &MockSubscription{
		eventType: reflect.TypeOf(eventType),
		eventCh:   make(chan any, settings.Buffer),
		bus:       m,
	}

	m.mu.Lock()
	m.subscriptions[sub.eventType] = append(m.subscriptions[sub.eventType], sub)
	m.mu.Unlock()

	return sub, nil
}

// Emitter 获取指定事件类型的发射器
func (m *MockEventBus) Emitter(eventType any, opts ...interfaces.EmitterOpt) (interfaces.Emitter, error) {
	m.mu.Lock()
	m.EmitterCalls = append(m.EmitterCalls, eventType)
	m.mu.Unlock()

	if m.EmitterFunc != nil {
		return m.EmitterFunc(eventType, opts...)
	}
	return &MockEmitter{eventType: eventType, bus: m}, nil
}

// ============================================================================
// MockSubscription 方法
// ============================================================================

// Out 返回接收事件的通道
func (s *MockSubscription) Out() <-chan any {
	return s.eventCh
}

// Dropped 返回丢弃的事件数
func (s *MockSubscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close 取消订阅
func (s *MockSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.eventCh)

	s.bus.mu.Lock()
	subs := s.bus.subscriptions[s.eventType]
	for i, sub := range subs {
		if sub == s {
			s.bus.subscriptions[s.eventType] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	s.bus.mu.Unlock()

	return nil
}

// IsClosed 检查是否已关闭
func (s *MockSubscription) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *MockSubscription) deliver(event any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.eventCh <- event:
	default:
		s.dropped.Add(1)
	}
}

// ============================================================================
// MockEmitter 方法
// ============================================================================

// Emit 发射事件
func (e *MockEmitter) Emit(event any) error {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil
	}
	e.bus.EmitEvent(e.eventType, event)
	return nil
}

// Close 关闭发射器
func (e *MockEmitter) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// ============================================================================
// 测试辅助方法
// ============================================================================

// EmitEvent 直接发射事件到指定类型的订阅者
//
// eventType 与 Subscribe 相同，按类型匹配，例如 new(types.EvtTopologyChanged)。
func (m *MockEventBus) EmitEvent(eventType any, event any) {
	m.mu.RLock()
	subs := append([]*MockSubscription(nil), m.subscriptions[reflect.TypeOf(eventType)]...)
	m.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(event)
	}
}

// GetSubscribers 返回指定事件类型的订阅者数量
func (m *MockEventBus) GetSubscribers(eventType any) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions[reflect.TypeOf(eventType)])
}

// 确保实现接口
var _ interfaces.EventBus = (*MockEventBus)(nil)
var _ interfaces.Subscription = (*MockSubscription)(nil)
var _ interfaces.Emitter = (*MockEmitter)(nil)

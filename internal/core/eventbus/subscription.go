package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
)

var (
	_ pkgif.Subscription = (*Subscription)(nil)
	_ pkgif.Emitter      = (*Emitter)(nil)
)

// ============================================================================
//                              Subscription 实现
// ============================================================================

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	typ       reflect.Type
	out       chan any
	dropped   atomic.Int64
	closeOnce sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan any {
	return s.out
}

// Dropped 返回丢弃的事件数
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// deliver 非阻塞投递，缓冲区满时返回 false
//
// 调用方必须持有所属节点的锁。
func (s *Subscription) deliver(event any) bool {
	select {
	case s.out <- event:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Close 取消订阅
//
// 先从总线摘除再关闭通道，发射方持节点锁投递，因此不会向已关闭通道发送。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.bus.removeSub(s)
		close(s.out)
	})
	return nil
}

// ============================================================================
//                              Emitter 实现
// ============================================================================

// Emitter 事件发射器
type Emitter struct {
	bus       *Bus
	node      *node
	typ       reflect.Type
	closed    atomic.Bool
	closeOnce sync.Once
}

// Emit 发射事件
func (e *Emitter) Emit(event any) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	e.node.emit(event)
	return nil
}

// Close 关闭发射器
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if e.node.nEmitters.Add(-1) == 0 {
			e.bus.tryDropNode(e.typ)
		}
	})
	return nil
}

package mocks

import (
	"slices"
	"sync"

	"github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// MockAckListener 模拟 AckListener 接口实现
type MockAckListener struct {
	mu   sync.Mutex
	acks []types.Ack

	// 可覆盖的方法
	OnAckFunc func(ack types.Ack)
}

// NewMockAckListener 创建 MockAckListener
func NewMockAckListener() *MockAckListener {
	return &MockAckListener{}
}

// OnAck 实现 AckListener
func (l *MockAckListener) OnAck(ack types.Ack) {
	l.mu.Lock()
	l.acks = append(l.acks, ack)
	l.mu.Unlock()

	if l.OnAckFunc != nil {
		l.OnAckFunc(ack)
	}
}

// Acks 按到达顺序返回确认
func (l *MockAckListener) Acks() []types.Ack {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.acks)
}

// Last 返回最后一条确认
func (l *MockAckListener) Last() (types.Ack, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.acks) == 0 {
		return types.Ack{}, false
	}
	return l.acks[len(l.acks)-1], true
}

// StaleCount 返回迟到确认数
func (l *MockAckListener) StaleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, a := range l.acks {
		if a.Stale {
			n++
		}
	}
	return n
}

var _ interfaces.AckListener = (*MockAckListener)(nil)

package mocks

import (
	"slices"
	"sync"
	"time"

	"github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// 插件方法名
const (
	MethodConnect             = "AsyncConnect"
	MethodDisconnect          = "AsyncDisconnect"
	MethodAbort               = "AsyncAbort"
	MethodSetSinkVolume       = "AsyncSetSinkVolume"
	MethodSetSourceVolume     = "AsyncSetSourceVolume"
	MethodSetSourceState      = "AsyncSetSourceState"
	MethodSetSinkSoundProps   = "AsyncSetSinkSoundProperties"
	MethodSetSourceSoundProps = "AsyncSetSourceSoundProperties"
)

// PluginCall 一次插件调用记录
type PluginCall struct {
	Method       string
	Handle       types.Handle
	ConnectionID types.ConnectionID
	SourceID     types.SourceID
	SinkID       types.SinkID
	Format       types.ConnectionFormat
	Volume       types.Volume
	Ramp         types.RampType
	RampTime     time.Duration
	State        types.SourceState
	Props        []types.SoundProperty
}

// MockPlugin 模拟 RoutingPlugin 接口实现
//
// 默认受理所有请求并返回 nil，确认由测试通过 AckReceiver 手动回送。
type MockPlugin struct {
	mu    sync.Mutex
	calls []PluginCall

	// 可覆盖的方法
	AsyncConnectFunc                  func(h types.Handle, connID types.ConnectionID, sourceID types.SourceID, sinkID types.SinkID, format types.ConnectionFormat) error
	AsyncDisconnectFunc               func(h types.Handle, connID types.ConnectionID) error
	AsyncAbortFunc                    func(h types.Handle) error
	AsyncSetSinkVolumeFunc            func(h types.Handle, sinkID types.SinkID, v types.Volume, ramp types.RampType, rampTime time.Duration) error
	AsyncSetSourceVolumeFunc          func(h types.Handle, sourceID types.SourceID, v types.Volume, ramp types.RampType, rampTime time.Duration) error
	AsyncSetSourceStateFunc           func(h types.Handle, sourceID types.SourceID, state types.SourceState) error
	AsyncSetSinkSoundPropertiesFunc   func(h types.Handle, sinkID types.SinkID, props []types.SoundProperty) error
	AsyncSetSourceSoundPropertiesFunc func(h types.Handle, sourceID types.SourceID, props []types.SoundProperty) error
}

// NewMockPlugin 创建默认受理一切请求的 MockPlugin
func NewMockPlugin() *MockPlugin {
	return &MockPlugin{}
}

func (m *MockPlugin) record(c PluginCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// AsyncConnect 实现 RoutingPlugin
func (m *MockPlugin) AsyncConnect(h types.Handle, connID types.ConnectionID, sourceID types.SourceID, sinkID types.SinkID, format types.ConnectionFormat) error {
	m.record(PluginCall{Method: MethodConnect, Handle: h, ConnectionID: connID, SourceID: sourceID, SinkID: sinkID, Format: format})
	if m.AsyncConnectFunc != nil {
		return m.AsyncConnectFunc(h, connID, sourceID, sinkID, format)
	}
	return nil
}

// AsyncDisconnect 实现 RoutingPlugin
func (m *MockPlugin) AsyncDisconnect(h types.Handle, connID types.ConnectionID) error {
	m.record(PluginCall{Method: MethodDisconnect, Handle: h, ConnectionID: connID})
	if m.AsyncDisconnectFunc != nil {
		return m.AsyncDisconnectFunc(h, connID)
	}
	return nil
}

// AsyncAbort 实现 RoutingPlugin
func (m *MockPlugin) AsyncAbort(h types.Handle) error {
	m.record(PluginCall{Method: MethodAbort, Handle: h})
	if m.AsyncAbortFunc != nil {
		return m.AsyncAbortFunc(h)
	}
	return nil
}

// AsyncSetSinkVolume 实现 RoutingPlugin
func (m *MockPlugin) AsyncSetSinkVolume(h types.Handle, sinkID types.SinkID, v types.Volume, ramp types.RampType, rampTime time.Duration) error {
	m.record(PluginCall{Method: MethodSetSinkVolume, Handle: h, SinkID: sinkID, Volume: v, Ramp: ramp, RampTime: rampTime})
	if m.AsyncSetSinkVolumeFunc != nil {
		return m.AsyncSetSinkVolumeFunc(h, sinkID, v, ramp, rampTime)
	}
	return nil
}

// AsyncSetSourceVolume 实现 RoutingPlugin
func (m *MockPlugin) AsyncSetSourceVolume(h types.Handle, sourceID types.SourceID, v types.Volume, ramp types.RampType, rampTime time.Duration) error {
	m.record(PluginCall{Method: MethodSetSourceVolume, Handle: h, SourceID: sourceID, Volume: v, Ramp: ramp, RampTime: rampTime})
	if m.AsyncSetSourceVolumeFunc != nil {
		return m.AsyncSetSourceVolumeFunc(h, sourceID, v, ramp, rampTime)
	}
	return nil
}

// AsyncSetSourceState 实现 RoutingPlugin
func (m *MockPlugin) AsyncSetSourceState(h types.Handle, sourceID types.SourceID, state types.SourceState) error {
	m.record(PluginCall{Method: MethodSetSourceState, Handle: h, SourceID: sourceID, State: state})
	if m.AsyncSetSourceStateFunc != nil {
		return m.AsyncSetSourceStateFunc(h, sourceID, state)
	}
	return nil
}

// AsyncSetSinkSoundProperties 实现 RoutingPlugin
func (m *MockPlugin) AsyncSetSinkSoundProperties(h types.Handle, sinkID types.SinkID, props []types.SoundProperty) error {
	m.record(PluginCall{Method: MethodSetSinkSoundProps, Handle: h, SinkID: sinkID, Props: slices.Clone(props)})
	if m.AsyncSetSinkSoundPropertiesFunc != nil {
		return m.AsyncSetSinkSoundPropertiesFunc(h, sinkID, props)
	}
	return nil
}

// AsyncSetSourceSoundProperties 实现 RoutingPlugin
func (m *MockPlugin) AsyncSetSourceSoundProperties(h types.Handle, sourceID types.SourceID, props []types.SoundProperty) error {
	m.record(PluginCall{Method: MethodSetSourceSoundProps, Handle: h, SourceID: sourceID, Props: slices.Clone(props)})
	if m.AsyncSetSourceSoundPropertiesFunc != nil {
		return m.AsyncSetSourceSoundPropertiesFunc(h, sourceID, props)
	}
	return nil
}

// ============================================================================
// 测试辅助方法
// ============================================================================

// Calls 返回全部调用记录的副本
func (m *MockPlugin) Calls() []PluginCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// CallCount 返回指定方法的调用次数
func (m *MockPlugin) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastCall 返回指定方法的最后一次调用
func (m *MockPlugin) LastCall(method string) (PluginCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Method == method {
			return m.calls[i], true
		}
	}
	return PluginCall{}, false
}

// Reset 清空调用记录
func (m *MockPlugin) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

var _ interfaces.RoutingPlugin = (*MockPlugin)(nil)

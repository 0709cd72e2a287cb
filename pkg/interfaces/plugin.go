package interfaces

import (
	"time"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              RoutingPlugin - 域插件
// ============================================================================

// RoutingPlugin 域插件
//
// 每个方法只表示"已受理"，结果稍后通过 AckReceiver 在插件自己的
// 执行上下文中回送。返回错误表示同步拒绝，不会再有确认。
type RoutingPlugin interface {
	AsyncConnect(h types.Handle, connID types.ConnectionID, sourceID types.SourceID, sinkID types.SinkID, format types.ConnectionFormat) error
	AsyncDisconnect(h types.Handle, connID types.ConnectionID) error
	AsyncAbort(h types.Handle) error
	AsyncSetSinkVolume(h types.Handle, sinkID types.SinkID, v types.Volume, ramp types.RampType, rampTime time.Duration) error
	AsyncSetSourceVolume(h types.Handle, sourceID types.SourceID, v types.Volume, ramp types.RampType, rampTime time.Duration) error
	AsyncSetSourceState(h types.Handle, sourceID types.SourceID, state types.SourceState) error
	AsyncSetSinkSoundProperties(h types.Handle, sinkID types.SinkID, props []types.SoundProperty) error
	AsyncSetSourceSoundProperties(h types.Handle, sourceID types.SourceID, props []types.SoundProperty) error
}

// AckReceiver 插件回送确认的入口，由操作分发器实现
type AckReceiver interface {
	AckConnect(h types.Handle, connID types.ConnectionID, code types.ErrorCode)
	AckDisconnect(h types.Handle, connID types.ConnectionID, code types.ErrorCode)
	AckSetSinkVolume(h types.Handle, v types.Volume, code types.ErrorCode)
	AckSetSourceVolume(h types.Handle, v types.Volume, code types.ErrorCode)
	AckSetSourceState(h types.Handle, code types.ErrorCode)
	AckSetSinkSoundProperties(h types.Handle, code types.ErrorCode)
	AckSetSourceSoundProperties(h types.Handle, code types.ErrorCode)
}

// AckListener 调用方的确认回调
//
// 对已终结句柄的重复确认仍会回调，此时 Ack.Stale 为 true。
type AckListener interface {
	OnAck(ack types.Ack)
}

// AckListenerFunc 函数适配器
type AckListenerFunc func(ack types.Ack)

// OnAck 实现 AckListener
func (f AckListenerFunc) OnAck(ack types.Ack) {
	f(ack)
}

package dispatcher

import (
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              确认处理
// ============================================================================

// complete 终结句柄，类型不符或句柄已终结时返回 first=false
func (d *Dispatcher) complete(h types.Handle, want types.HandleType) (payload any, first bool) {
	if h.Type != want || h.IsZero() {
		return nil, false
	}
	entry, first := d.handles.Complete(h)
	if !first {
		return nil, false
	}
	d.admit.release()
	d.metrics.SetActive(d.handles.Len())
	return entry.Payload, true
}

// finish 记录并回调监听器
func (d *Dispatcher) finish(ack types.Ack) {
	d.metrics.RecordAck(ack.Handle.Type, ack.Code, ack.Stale)
	if ack.Stale {
		logger.Warn("迟到或重复的确认", "handle", ack.Handle, "code", ack.Code)
	} else {
		logger.Debug("收到确认", "handle", ack.Handle, "code", ack.Code)
	}

	d.listenerMu.RLock()
	listeners := d.listeners
	d.listenerMu.RUnlock()
	for _, l := range listeners {
		l.OnAck(ack)
	}
}

// AckConnect connect 确认
//
// 成功时连接转为 final，否则移除 reserved 连接。
// 取消后到达的成功确认同样使连接生效。
func (d *Dispatcher) AckConnect(h types.Handle, connID types.ConnectionID, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code, ConnectionID: connID}

	if h.IsZero() && h.Type == types.HandleConnect && d.config.LegacyZeroHandle {
		d.ackUntrackedConnect(ack)
		return
	}

	payload, first := d.complete(h, types.HandleConnect)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(connectPayload)
	if connID != p.connID {
		logger.Warn("确认中的连接 ID 与下发时不符", "handle", h, "acked", connID, "issued", p.connID)
		ack.ConnectionID = p.connID
	}
	if code == types.CodeOK {
		if err := d.store.ChangeConnectionFinal(p.connID); err != nil {
			logger.Warn("连接转为 final 失败", "connectionID", p.connID, "err", err)
		}
	} else if err := d.store.RemoveConnection(p.connID); err != nil {
		logger.Warn("移除连接失败", "connectionID", p.connID, "err", err)
	}
	d.finish(ack)
}

// ackUntrackedConnect 句柄 0 的 connect 确认按连接 ID 生效
//
// 只处理仍为 reserved 的连接，其它情况视为迟到确认。
func (d *Dispatcher) ackUntrackedConnect(ack types.Ack) {
	c, err := d.store.GetConnection(ack.ConnectionID)
	if err != nil || c.State != types.ConnectionReserved {
		ack.Stale = true
		d.finish(ack)
		return
	}
	if ack.Code == types.CodeOK {
		err = d.store.ChangeConnectionFinal(c.ID)
	} else {
		err = d.store.RemoveConnection(c.ID)
	}
	if err != nil {
		logger.Warn("处理句柄 0 的连接确认失败", "connectionID", c.ID, "err", err)
	}
	d.finish(ack)
}

// AckDisconnect disconnect 确认，成功时移除连接
func (d *Dispatcher) AckDisconnect(h types.Handle, connID types.ConnectionID, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code, ConnectionID: connID}

	payload, first := d.complete(h, types.HandleDisconnect)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(disconnectPayload)
	ack.ConnectionID = p.connID
	if code == types.CodeOK {
		if err := d.store.RemoveConnection(p.connID); err != nil {
			logger.Warn("移除连接失败", "connectionID", p.connID, "err", err)
		}
	}
	d.finish(ack)
}

// volumeApplies 音量确认在成功或取消时都携带插件实际生效的音量
func volumeApplies(code types.ErrorCode) bool {
	return code == types.CodeOK || code == types.CodeAborted
}

// AckSetSinkVolume 音宿音量确认，写回确认中的音量
func (d *Dispatcher) AckSetSinkVolume(h types.Handle, v types.Volume, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code, Volume: v}

	payload, first := d.complete(h, types.HandleSetSinkVolume)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(sinkVolumePayload)
	if volumeApplies(code) {
		if err := d.store.ChangeSinkVolume(p.sinkID, v); err != nil {
			logger.Warn("写回音宿音量失败", "sinkID", p.sinkID, "err", err)
		}
	}
	d.finish(ack)
}

// AckSetSourceVolume 音源音量确认，写回确认中的音量
func (d *Dispatcher) AckSetSourceVolume(h types.Handle, v types.Volume, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code, Volume: v}

	payload, first := d.complete(h, types.HandleSetSourceVolume)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(sourceVolumePayload)
	if volumeApplies(code) {
		if err := d.store.ChangeSourceVolume(p.sourceID, v); err != nil {
			logger.Warn("写回音源音量失败", "sourceID", p.sourceID, "err", err)
		}
	}
	d.finish(ack)
}

// AckSetSourceState 音源状态确认，成功时写回请求的状态
func (d *Dispatcher) AckSetSourceState(h types.Handle, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code}

	payload, first := d.complete(h, types.HandleSetSourceState)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(sourceStatePayload)
	if code == types.CodeOK {
		if err := d.store.ChangeSourceState(p.sourceID, p.state); err != nil {
			logger.Warn("写回音源状态失败", "sourceID", p.sourceID, "err", err)
		}
	}
	d.finish(ack)
}

// AckSetSinkSoundProperties 音宿声音属性确认
func (d *Dispatcher) AckSetSinkSoundProperties(h types.Handle, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code}

	payload, first := d.complete(h, types.HandleSetSinkSoundProperties)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(sinkPropsPayload)
	if code == types.CodeOK {
		if err := d.store.ChangeSinkSoundProperties(p.sinkID, p.props); err != nil {
			logger.Warn("写回音宿声音属性失败", "sinkID", p.sinkID, "err", err)
		}
	}
	d.finish(ack)
}

// AckSetSourceSoundProperties 音源声音属性确认
func (d *Dispatcher) AckSetSourceSoundProperties(h types.Handle, code types.ErrorCode) {
	ack := types.Ack{Handle: h, Code: code}

	payload, first := d.complete(h, types.HandleSetSourceSoundProperties)
	if !first {
		ack.Stale = true
		d.finish(ack)
		return
	}

	p := payload.(sourcePropsPayload)
	if code == types.CodeOK {
		if err := d.store.ChangeSourceSoundProperties(p.sourceID, p.props); err != nil {
			logger.Warn("写回音源声音属性失败", "sourceID", p.sourceID, "err", err)
		}
	}
	d.finish(ack)
}

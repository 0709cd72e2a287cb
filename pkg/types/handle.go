package types

import "fmt"

// ============================================================================
//                              Handle - 异步操作句柄
// ============================================================================

// Handle 一次未完成异步操作的句柄
//
// ID 取值 1..N，0 表示无句柄。Gen 为槽位代数，插件确认时原样回传，
// 用于区分迟到确认与同一 ID 的新操作。
type Handle struct {
	ID   uint16     `json:"id"`
	Type HandleType `json:"type"`
	Gen  uint32     `json:"gen,omitempty"`
}

// IsZero 是否为空句柄
func (h Handle) IsZero() bool {
	return h.ID == 0
}

// String 返回句柄的字符串表示
func (h Handle) String() string {
	return fmt.Sprintf("%s#%d.%d", h.Type, h.ID, h.Gen)
}

// Ack 插件确认，交给调用方监听器
type Ack struct {
	Handle Handle    `json:"handle"`
	Code   ErrorCode `json:"code"`

	// ConnectionID 仅 connect/disconnect 确认有效
	ConnectionID ConnectionID `json:"connection_id,omitempty"`

	// Volume 仅音量确认有效
	Volume Volume `json:"volume,omitempty"`

	// Stale 句柄已终结后到达的确认，不再改变状态
	Stale bool `json:"stale,omitempty"`
}

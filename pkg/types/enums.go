package types

// ============================================================================
//                              DomainState - 域状态
// ============================================================================

// DomainState 域生命周期状态
type DomainState int

const (
	// DomainStateUnknown 未知
	DomainStateUnknown DomainState = iota
	// DomainStateControlled 受控
	DomainStateControlled
	// DomainStateIndependentStartup 独立启动
	DomainStateIndependentStartup
	// DomainStateIndependentRundown 独立下线
	DomainStateIndependentRundown
)

// String 返回域状态的字符串表示
func (s DomainState) String() string {
	switch s {
	case DomainStateControlled:
		return "controlled"
	case DomainStateIndependentStartup:
		return "independent-startup"
	case DomainStateIndependentRundown:
		return "independent-rundown"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              SourceState - 音源状态
// ============================================================================

// SourceState 音源状态
type SourceState int

const (
	// SourceStateUnknown 未知
	SourceStateUnknown SourceState = iota
	// SourceStateOn 开启
	SourceStateOn
	// SourceStateOff 关闭
	SourceStateOff
	// SourceStatePaused 暂停
	SourceStatePaused
)

// String 返回音源状态的字符串表示
func (s SourceState) String() string {
	switch s {
	case SourceStateOn:
		return "on"
	case SourceStateOff:
		return "off"
	case SourceStatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Availability - 可用性
// ============================================================================

// Availability 音源/音宿可用性
type Availability int

const (
	// AvailabilityUnknown 未知
	AvailabilityUnknown Availability = iota
	// AvailabilityAvailable 可用
	AvailabilityAvailable
	// AvailabilityUnavailable 不可用
	AvailabilityUnavailable
)

// ============================================================================
//                              RampType - 音量渐变
// ============================================================================

// RampType 音量渐变类型
type RampType int

const (
	// RampUnknown 未知
	RampUnknown RampType = iota
	// RampDirect 立即生效
	RampDirect
	// RampLinear 线性渐变
	RampLinear
	// RampExponential 指数渐变
	RampExponential
)

// ============================================================================
//                              ConnectionState - 连接状态
// ============================================================================

// ConnectionState 连接状态
type ConnectionState int

const (
	// ConnectionReserved 已下发，等待确认
	ConnectionReserved ConnectionState = iota + 1
	// ConnectionFinal 已确认
	ConnectionFinal
)

// String 返回连接状态的字符串表示
func (s ConnectionState) String() string {
	switch s {
	case ConnectionReserved:
		return "reserved"
	case ConnectionFinal:
		return "final"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              HandleType - 句柄类型
// ============================================================================

// HandleType 异步操作类型
type HandleType int

const (
	// HandleUnknown 未知
	HandleUnknown HandleType = iota
	// HandleConnect 建立连接
	HandleConnect
	// HandleDisconnect 断开连接
	HandleDisconnect
	// HandleSetSinkVolume 设置音宿音量
	HandleSetSinkVolume
	// HandleSetSourceVolume 设置音源音量
	HandleSetSourceVolume
	// HandleSetSourceState 设置音源状态
	HandleSetSourceState
	// HandleSetSinkSoundProperties 设置音宿声音属性
	HandleSetSinkSoundProperties
	// HandleSetSourceSoundProperties 设置音源声音属性
	HandleSetSourceSoundProperties
)

// String 返回句柄类型的字符串表示
func (t HandleType) String() string {
	switch t {
	case HandleConnect:
		return "connect"
	case HandleDisconnect:
		return "disconnect"
	case HandleSetSinkVolume:
		return "set_sink_volume"
	case HandleSetSourceVolume:
		return "set_source_volume"
	case HandleSetSourceState:
		return "set_source_state"
	case HandleSetSinkSoundProperties:
		return "set_sink_sound_properties"
	case HandleSetSourceSoundProperties:
		return "set_source_sound_properties"
	default:
		return "unknown"
	}
}

package dispatcher

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-audiomgr/internal/core/handles"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/lib/log"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

var logger = log.Logger("core/dispatcher")

var _ pkgif.AckReceiver = (*Dispatcher)(nil)

// ============================================================================
//                              Dispatcher 实现
// ============================================================================

// Dispatcher 操作分发器
type Dispatcher struct {
	config  *Config
	store   pkgif.EntityStore
	plugins *Registry
	handles *handles.Table
	admit   *admission
	metrics *Metrics
	clock   clock.Clock
	reg     prometheus.Registerer

	listenerMu sync.RWMutex
	listeners  []pkgif.AckListener

	closed atomic.Bool
}

// Option 分发器选项
type Option func(*Dispatcher)

// WithClock 设置时钟，测试中使用 clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// WithAckListener 追加确认监听器
func WithAckListener(l pkgif.AckListener) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.listeners = append(d.listeners, l)
		}
	}
}

// WithRegistry 使用外部插件表
func WithRegistry(r *Registry) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.plugins = r
		}
	}
}

// WithRegisterer 设置指标注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) {
		d.reg = reg
	}
}

// New 创建分发器
func New(cfg *Config, store pkgif.EntityStore, opts ...Option) (*Dispatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("dispatcher: store is nil")
	}

	d := &Dispatcher{
		config:  cfg.Clone(),
		store:   store,
		plugins: NewRegistry(),
		admit:   newAdmission(cfg.MaxInFlight),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.clock == nil {
		d.clock = clock.New()
	}
	d.metrics = NewMetrics(d.reg)

	tbl, err := handles.NewTable(cfg.HandlePoolSize, d.clock)
	if err != nil {
		return nil, err
	}
	d.handles = tbl
	return d, nil
}

// Plugins 插件表
func (d *Dispatcher) Plugins() *Registry {
	return d.plugins
}

// RegisterPlugin 为域登记插件
func (d *Dispatcher) RegisterPlugin(domainID types.DomainID, p pkgif.RoutingPlugin) error {
	return d.plugins.Register(domainID, p)
}

// AddAckListener 追加确认监听器
func (d *Dispatcher) AddAckListener(l pkgif.AckListener) {
	if l == nil {
		return
	}
	d.listenerMu.Lock()
	d.listeners = append(d.listeners, l)
	d.listenerMu.Unlock()
}

// Close 拒绝后续操作；已下发操作的确认仍会处理
func (d *Dispatcher) Close() error {
	if d.closed.CompareAndSwap(false, true) {
		logger.Info("分发器已关闭", "active", d.handles.Len())
	}
	return nil
}

// ============================================================================
//                              句柄查询
// ============================================================================

// HandleInfo 活跃句柄信息
type HandleInfo struct {
	Handle        types.Handle   `json:"handle"`
	State         string         `json:"state"`
	DomainID      types.DomainID `json:"domain_id"`
	IssuedAt      time.Time      `json:"issued_at"`
	Age           time.Duration  `json:"age"`
	CorrelationID uuid.UUID      `json:"correlation_id"`
}

// ListHandles 按 ID 升序返回活跃句柄
func (d *Dispatcher) ListHandles() []HandleInfo {
	entries := d.handles.List()
	out := make([]HandleInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, HandleInfo{
			Handle:        e.Handle,
			State:         e.State.String(),
			DomainID:      e.DomainID,
			IssuedAt:      e.IssuedAt,
			Age:           d.handles.Age(e),
			CorrelationID: e.CorrelationID,
		})
	}
	return out
}

// ActiveHandles 活跃句柄数
func (d *Dispatcher) ActiveHandles() int {
	return d.handles.Len()
}

// ============================================================================
//                              确认写回数据
// ============================================================================

type connectPayload struct {
	connID types.ConnectionID
}

type disconnectPayload struct {
	connID types.ConnectionID
}

type sinkVolumePayload struct {
	sinkID types.SinkID
	volume types.Volume
}

type sourceVolumePayload struct {
	sourceID types.SourceID
	volume   types.Volume
}

type sourceStatePayload struct {
	sourceID types.SourceID
	state    types.SourceState
}

type sinkPropsPayload struct {
	sinkID types.SinkID
	props  []types.SoundProperty
}

type sourcePropsPayload struct {
	sourceID types.SourceID
	props    []types.SoundProperty
}

// ============================================================================
//                              下发
// ============================================================================

// operation 一次待下发的操作
type operation struct {
	typ      types.HandleType
	domainID types.DomainID
	payload  any
	call     func(h types.Handle) error
	rollback func()
}

// admitOp 同步校验通过后申请准入
func (d *Dispatcher) admitOp(typ types.HandleType) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if !d.admit.tryAcquire() {
		d.metrics.RecordRejection()
		d.metrics.RecordOperation(typ, resultRejected)
		logger.Warn("在途操作已达上限", "type", typ, "limit", d.admit.limit)
		return fmt.Errorf("%w: %d operations in flight", types.ErrNotPossible, d.admit.limit)
	}
	return nil
}

// issue 分配句柄并调用插件，调用方已持有准入
func (d *Dispatcher) issue(op operation) (types.Handle, error) {
	entry, err := d.handles.Allocate(op.typ, op.domainID, op.payload)
	if err != nil {
		if errors.Is(err, types.ErrResourceExhausted) && d.config.LegacyZeroHandle {
			return d.issueUntracked(op)
		}
		d.undo(op)
		d.metrics.RecordOperation(op.typ, resultRejected)
		logger.Warn("句柄池耗尽", "type", op.typ)
		return types.Handle{}, err
	}
	d.metrics.SetActive(d.handles.Len())

	logger.Debug("下发操作", "handle", entry.Handle, "domainID", op.domainID, "correlationID", entry.CorrelationID)
	if callErr := op.call(entry.Handle); callErr != nil {
		// 插件可能已在同步调用内确认
		if _, first := d.handles.Complete(entry.Handle); first {
			d.undo(op)
			d.metrics.SetActive(d.handles.Len())
		}
		d.metrics.RecordOperation(op.typ, resultFailed)
		logger.Error("插件同步拒绝", "handle", entry.Handle, "correlationID", entry.CorrelationID, "err", callErr)
		return types.Handle{}, syncFailure(callErr)
	}

	d.metrics.RecordOperation(op.typ, resultDispatched)
	return entry.Handle, nil
}

// issueUntracked 句柄池耗尽时以句柄 0 下发，不跟踪确认
func (d *Dispatcher) issueUntracked(op operation) (types.Handle, error) {
	h := types.Handle{Type: op.typ}
	d.admit.release()

	logger.Warn("句柄池耗尽，以句柄 0 下发", "type", op.typ, "domainID", op.domainID)
	if err := op.call(h); err != nil {
		if op.rollback != nil {
			op.rollback()
		}
		d.metrics.RecordOperation(op.typ, resultFailed)
		return types.Handle{}, syncFailure(err)
	}
	d.metrics.RecordOperation(op.typ, resultUntracked)
	return h, nil
}

func (d *Dispatcher) undo(op operation) {
	if op.rollback != nil {
		op.rollback()
	}
	d.admit.release()
}

// syncFailure 插件同步错误归入错误分类，无法识别时包装为 ErrUnknown
func syncFailure(err error) error {
	if types.CodeOf(err) != types.CodeUnknown || errors.Is(err, types.ErrUnknown) {
		return err
	}
	return fmt.Errorf("%w: plugin: %w", types.ErrUnknown, err)
}

// ============================================================================
//                              连接
// ============================================================================

// Connect 建立连接
//
// 音源、音宿或音宿所属域的插件不存在时返回 types.ErrNonExistent，
// 不创建句柄或连接。成功时连接处于 reserved 状态，等待确认。
func (d *Dispatcher) Connect(sourceID types.SourceID, sinkID types.SinkID, format types.ConnectionFormat) (types.Handle, types.ConnectionID, error) {
	if _, err := d.store.GetSource(sourceID); err != nil {
		return types.Handle{}, 0, fmt.Errorf("%w: source %d", types.ErrNonExistent, sourceID)
	}
	sink, err := d.store.GetSink(sinkID)
	if err != nil {
		return types.Handle{}, 0, fmt.Errorf("%w: sink %d", types.ErrNonExistent, sinkID)
	}
	plugin, err := d.plugins.Lookup(sink.DomainID)
	if err != nil {
		return types.Handle{}, 0, err
	}
	if err := d.admitOp(types.HandleConnect); err != nil {
		return types.Handle{}, 0, err
	}

	connID, err := d.store.EnterConnection(types.Connection{SourceID: sourceID, SinkID: sinkID, Format: format})
	if err != nil {
		d.admit.release()
		return types.Handle{}, 0, err
	}

	h, err := d.issue(operation{
		typ:      types.HandleConnect,
		domainID: sink.DomainID,
		payload:  connectPayload{connID: connID},
		call: func(h types.Handle) error {
			return plugin.AsyncConnect(h, connID, sourceID, sinkID, format)
		},
		rollback: func() {
			if err := d.store.RemoveConnection(connID); err != nil {
				logger.Warn("回滚连接失败", "connectionID", connID, "err", err)
			}
		},
	})
	if err != nil {
		return types.Handle{}, 0, err
	}
	return h, connID, nil
}

// Disconnect 断开连接（final 或 reserved）
//
// 连接未知时返回 types.ErrNonExistent，不分配句柄。
func (d *Dispatcher) Disconnect(connID types.ConnectionID) (types.Handle, error) {
	conn, err := d.store.GetConnection(connID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: connection %d", types.ErrNonExistent, connID)
	}
	sink, err := d.store.GetSink(conn.SinkID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: sink %d", types.ErrNonExistent, conn.SinkID)
	}
	plugin, err := d.plugins.Lookup(sink.DomainID)
	if err != nil {
		return types.Handle{}, err
	}
	if err := d.admitOp(types.HandleDisconnect); err != nil {
		return types.Handle{}, err
	}

	return d.issue(operation{
		typ:      types.HandleDisconnect,
		domainID: sink.DomainID,
		payload:  disconnectPayload{connID: connID},
		call: func(h types.Handle) error {
			return plugin.AsyncDisconnect(h, connID)
		},
	})
}

// Abort 请求取消一个未完成的操作
//
// 句柄不活跃时返回 types.ErrNonExistent 且不调用插件。请求只成功转发一次，
// 之后的重复请求直接返回 nil；转发失败时可以重试。句柄在确认到达后才移除。
func (d *Dispatcher) Abort(h types.Handle) error {
	entry, first, err := d.handles.RequestAbort(h)
	if err != nil {
		return err
	}
	if !first {
		logger.Debug("取消请求已转发过", "handle", h)
		return nil
	}

	plugin, err := d.plugins.Lookup(entry.DomainID)
	if err != nil {
		d.handles.CancelAbort(h)
		return err
	}
	logger.Debug("转发取消请求", "handle", h, "domainID", entry.DomainID, "correlationID", entry.CorrelationID)
	if err := plugin.AsyncAbort(h); err != nil {
		// 未转发成功，允许调用方重试
		d.handles.CancelAbort(h)
		logger.Error("插件拒绝取消", "handle", h, "err", err)
		return syncFailure(err)
	}
	return nil
}

// ============================================================================
//                              音量、状态与声音属性
// ============================================================================

// SetSinkVolume 设置音宿音量
func (d *Dispatcher) SetSinkVolume(sinkID types.SinkID, v types.Volume, ramp types.RampType, rampTime time.Duration) (types.Handle, error) {
	sink, err := d.store.GetSink(sinkID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: sink %d", types.ErrNonExistent, sinkID)
	}
	return d.dispatchTo(sink.DomainID, types.HandleSetSinkVolume, sinkVolumePayload{sinkID: sinkID, volume: v},
		func(p pkgif.RoutingPlugin, h types.Handle) error {
			return p.AsyncSetSinkVolume(h, sinkID, v, ramp, rampTime)
		})
}

// SetSourceVolume 设置音源音量
func (d *Dispatcher) SetSourceVolume(sourceID types.SourceID, v types.Volume, ramp types.RampType, rampTime time.Duration) (types.Handle, error) {
	src, err := d.store.GetSource(sourceID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: source %d", types.ErrNonExistent, sourceID)
	}
	return d.dispatchTo(src.DomainID, types.HandleSetSourceVolume, sourceVolumePayload{sourceID: sourceID, volume: v},
		func(p pkgif.RoutingPlugin, h types.Handle) error {
			return p.AsyncSetSourceVolume(h, sourceID, v, ramp, rampTime)
		})
}

// SetSourceState 设置音源状态
func (d *Dispatcher) SetSourceState(sourceID types.SourceID, state types.SourceState) (types.Handle, error) {
	src, err := d.store.GetSource(sourceID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: source %d", types.ErrNonExistent, sourceID)
	}
	return d.dispatchTo(src.DomainID, types.HandleSetSourceState, sourceStatePayload{sourceID: sourceID, state: state},
		func(p pkgif.RoutingPlugin, h types.Handle) error {
			return p.AsyncSetSourceState(h, sourceID, state)
		})
}

// SetSinkSoundProperties 设置音宿声音属性
func (d *Dispatcher) SetSinkSoundProperties(sinkID types.SinkID, props []types.SoundProperty) (types.Handle, error) {
	sink, err := d.store.GetSink(sinkID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: sink %d", types.ErrNonExistent, sinkID)
	}
	props = slices.Clone(props)
	return d.dispatchTo(sink.DomainID, types.HandleSetSinkSoundProperties, sinkPropsPayload{sinkID: sinkID, props: props},
		func(p pkgif.RoutingPlugin, h types.Handle) error {
			return p.AsyncSetSinkSoundProperties(h, sinkID, slices.Clone(props))
		})
}

// SetSourceSoundProperties 设置音源声音属性
func (d *Dispatcher) SetSourceSoundProperties(sourceID types.SourceID, props []types.SoundProperty) (types.Handle, error) {
	src, err := d.store.GetSource(sourceID)
	if err != nil {
		return types.Handle{}, fmt.Errorf("%w: source %d", types.ErrNonExistent, sourceID)
	}
	props = slices.Clone(props)
	return d.dispatchTo(src.DomainID, types.HandleSetSourceSoundProperties, sourcePropsPayload{sourceID: sourceID, props: props},
		func(p pkgif.RoutingPlugin, h types.Handle) error {
			return p.AsyncSetSourceSoundProperties(h, sourceID, slices.Clone(props))
		})
}

func (d *Dispatcher) dispatchTo(domainID types.DomainID, typ types.HandleType, payload any, call func(pkgif.RoutingPlugin, types.Handle) error) (types.Handle, error) {
	plugin, err := d.plugins.Lookup(domainID)
	if err != nil {
		return types.Handle{}, err
	}
	if err := d.admitOp(typ); err != nil {
		return types.Handle{}, err
	}
	return d.issue(operation{
		typ:      typ,
		domainID: domainID,
		payload:  payload,
		call: func(h types.Handle) error {
			return call(plugin, h)
		},
	})
}

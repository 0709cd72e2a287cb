package audiomgr

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-audiomgr/config"
	"github.com/dep2p/go-audiomgr/internal/app"
	"github.com/dep2p/go-audiomgr/internal/core/dispatcher"
	"github.com/dep2p/go-audiomgr/internal/core/entitystore"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/lib/log"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

var logger = log.Logger("audiomgr")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 版本号
const Version = "v0.3.0"

// 构建时通过 -ldflags 注入
var (
	GitCommit = ""
	BuildDate = ""
)

// VersionInfo 返回完整版本描述
func VersionInfo() string {
	s := Version
	if GitCommit != "" {
		s += " (" + GitCommit + ")"
	}
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}

// HandleInfo 活跃句柄信息
type HandleInfo = dispatcher.HandleInfo

// Topology 拓扑快照
type Topology = entitystore.Topology

// ════════════════════════════════════════════════════════════════════════════
//                              Manager
// ════════════════════════════════════════════════════════════════════════════

// Manager 音频路由代理
//
// Manager 的所有方法都可以并发调用。
type Manager struct {
	cfg *config.Config
	rt  *app.Runtime

	mu     sync.Mutex
	closed bool
}

// New 创建并启动 Manager
//
// 返回时路由图已完成首次加载，所有 WithPlugin 登记的插件已就绪。
//
// 示例：
//
//	mgr, err := audiomgr.New(ctx,
//	    audiomgr.WithPreset("embedded"),
//	    audiomgr.WithPlugin(1, plugin),
//	)
func New(ctx context.Context, opts ...Option) (*Manager, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, fmt.Errorf("apply option: %w", err)
	}

	b := app.NewBootstrap(cfg,
		app.WithModules(o.modules...),
		app.WithRegisterer(o.registerer),
	)
	rt, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build runtime: %w", err)
	}

	logger.Debug("Manager 已创建", "version", Version)
	return &Manager{cfg: cfg, rt: rt}, nil
}

// Close 停止 Manager，重复调用返回 nil
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	return m.rt.Stop(context.Background())
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Config 返回生效配置的副本
func (m *Manager) Config() *config.Config {
	return config.CloneConfig(m.cfg)
}

// Store 返回实体存储
func (m *Manager) Store() pkgif.EntityStore {
	return m.rt.Store
}

// AckReceiver 返回插件回送确认的入口
func (m *Manager) AckReceiver() pkgif.AckReceiver {
	return m.rt.Dispatcher
}

// AddAckListener 运行中追加确认监听器
func (m *Manager) AddAckListener(l pkgif.AckListener) {
	m.rt.Dispatcher.AddAckListener(l)
}

// RegisterPlugin 运行中登记域插件
func (m *Manager) RegisterPlugin(domainID types.DomainID, p pkgif.RoutingPlugin) error {
	if p == nil {
		return ErrNilPlugin
	}
	if m.isClosed() {
		return ErrClosed
	}
	return m.rt.Dispatcher.RegisterPlugin(domainID, p)
}

// Gatherer 返回指标采集器，指标关闭时为 nil
func (m *Manager) Gatherer() prometheus.Gatherer {
	return m.rt.Gatherer
}

// MetricsAddr 返回指标 HTTP 服务的监听地址，未启用时为空
func (m *Manager) MetricsAddr() string {
	if m.rt.Metrics == nil {
		return ""
	}
	return m.rt.Metrics.Addr()
}

// ════════════════════════════════════════════════════════════════════════════
//                              拓扑
// ════════════════════════════════════════════════════════════════════════════

// ImportTopology 从 JSON 读取并注册拓扑
//
// 单条记录失败不会中断导入，返回的错误合并了所有失败记录。
func (m *Manager) ImportTopology(r io.Reader) error {
	if m.isClosed() {
		return ErrClosed
	}
	t, err := entitystore.DecodeTopology(r)
	if err != nil {
		return err
	}
	return m.rt.Store.Import(t)
}

// ExportTopology 导出当前拓扑快照
func (m *Manager) ExportTopology() *Topology {
	return m.rt.Store.Export()
}

// ════════════════════════════════════════════════════════════════════════════
//                              路由
// ════════════════════════════════════════════════════════════════════════════

// GetRoute 按配置的路径数与环路上限查询路由
//
// onlyFree 为 true 时跳过已被连接占用的音源与音宿。
func (m *Manager) GetRoute(onlyFree bool, sourceID types.SourceID, sinkID types.SinkID) ([]types.Route, error) {
	return m.GetRouteWith(onlyFree, sourceID, sinkID, m.cfg.Routing.MaxCycles, 0)
}

// GetRouteWith 指定环路上限与路径数查询路由
func (m *Manager) GetRouteWith(onlyFree bool, sourceID types.SourceID, sinkID types.SinkID, maxCycles, maxPaths int) ([]types.Route, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	return m.rt.Router.GetRoute(onlyFree, sourceID, sinkID, maxCycles, maxPaths)
}

// ReloadGraph 立即按当前拓扑重建路由图
func (m *Manager) ReloadGraph() error {
	if m.isClosed() {
		return ErrClosed
	}
	return m.rt.Router.Load()
}

// MarkDirty 标记路由图过期，下次查询时重建
func (m *Manager) MarkDirty() {
	m.rt.Router.MarkDirty()
}

// ════════════════════════════════════════════════════════════════════════════
//                              操作分发
// ════════════════════════════════════════════════════════════════════════════

// Connect 预留连接并交给音宿所在域的插件
func (m *Manager) Connect(sourceID types.SourceID, sinkID types.SinkID, format types.ConnectionFormat) (types.Handle, types.ConnectionID, error) {
	if m.isClosed() {
		return types.Handle{}, 0, ErrClosed
	}
	return m.rt.Dispatcher.Connect(sourceID, sinkID, format)
}

// Disconnect 拆除连接
func (m *Manager) Disconnect(connID types.ConnectionID) (types.Handle, error) {
	if m.isClosed() {
		return types.Handle{}, ErrClosed
	}
	return m.rt.Dispatcher.Disconnect(connID)
}

// Abort 请求中止尚未确认的操作
func (m *Manager) Abort(h types.Handle) error {
	if m.isClosed() {
		return ErrClosed
	}
	return m.rt.Dispatcher.Abort(h)
}

// SetSinkVolume 设置音宿音量
func (m *Manager) SetSinkVolume(sinkID types.SinkID, v types.Volume, ramp types.RampType, rampTime time.Duration) (types.Handle, error) {
	if m.isClosed() {
		return types.Handle{}, ErrClosed
	}
	return m.rt.Dispatcher.SetSinkVolume(sinkID, v, ramp, rampTime)
}

// SetSourceVolume 设置音源音量
func (m *Manager) SetSourceVolume(sourceID types.SourceID, v types.Volume, ramp types.RampType, rampTime time.Duration) (types.Handle, error) {
	if m.isClosed() {
		return types.Handle{}, ErrClosed
	}
	return m.rt.Dispatcher.SetSourceVolume(sourceID, v, ramp, rampTime)
}

// SetSourceState 设置音源状态
func (m *Manager) SetSourceState(sourceID types.SourceID, state types.SourceState) (types.Handle, error) {
	if m.isClosed() {
		return types.Handle{}, ErrClosed
	}
	return m.rt.Dispatcher.SetSourceState(sourceID, state)
}

// SetSinkSoundProperties 设置音宿声音属性
func (m *Manager) SetSinkSoundProperties(sinkID types.SinkID, props []types.SoundProperty) (types.Handle, error) {
	if m.isClosed() {
		return types.Handle{}, ErrClosed
	}
	return m.rt.Dispatcher.SetSinkSoundProperties(sinkID, props)
}

// SetSourceSoundProperties 设置音源声音属性
func (m *Manager) SetSourceSoundProperties(sourceID types.SourceID, props []types.SoundProperty) (types.Handle, error) {
	if m.isClosed() {
		return types.Handle{}, ErrClosed
	}
	return m.rt.Dispatcher.SetSourceSoundProperties(sourceID, props)
}

// ListHandles 按 ID 升序返回活跃句柄
func (m *Manager) ListHandles() []HandleInfo {
	return m.rt.Dispatcher.ListHandles()
}

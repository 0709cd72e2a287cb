package routing

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/lib/log"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

var logger = log.Logger("core/routing")

// Store 路由器读取的存储视图
type Store interface {
	pkgif.TopologyReader

	ListConnections() []types.Connection
	ListConnectionsReserved() []types.Connection
}

// ============================================================================
//                              Router 实现
// ============================================================================

// Router 路由搜索器
type Router struct {
	config  *Config
	store   Store
	chooser pkgif.FormatChooser
	metrics *Metrics
	cache   *routeCache

	sub         pkgif.Subscription
	lastDropped atomic.Int64

	loadMu  sync.Mutex
	graph   atomic.Pointer[Graph]
	version atomic.Uint64
	dirty   atomic.Bool
	closed  atomic.Bool
}

// Option 路由器选项
type Option func(*Router)

// WithFormatChooser 设置格式选择策略
func WithFormatChooser(c pkgif.FormatChooser) Option {
	return func(r *Router) {
		if c != nil {
			r.chooser = c
		}
	}
}

// WithRegisterer 设置指标注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Router) {
		r.metrics = NewMetrics(reg)
	}
}

// NewRouter 创建路由器
//
// bus 为 nil 时不订阅拓扑事件，需要调用方通过 MarkDirty 或 Load 刷新。
// 新建的路由器处于脏状态，首次查询或 Load 时构图。
func NewRouter(cfg *Config, store Store, bus pkgif.EventBus, opts ...Option) (*Router, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("routing: store is nil")
	}

	r := &Router{
		config:  cfg.Clone(),
		store:   store,
		chooser: LowestIndexChooser{},
		cache:   newRouteCache(cfg.CacheSize, cfg.CacheTTL),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}

	if bus != nil {
		sub, err := bus.Subscribe(new(types.EvtTopologyChanged), pkgif.BufSize(cfg.SubscriptionBuffer))
		if err != nil {
			return nil, fmt.Errorf("routing: subscribe topology events: %w", err)
		}
		r.sub = sub
	}

	r.dirty.Store(true)
	return r, nil
}

// ============================================================================
//                              图生命周期
// ============================================================================

// Dirty 图是否需要重建
//
// 非阻塞地排空拓扑事件；任一事件到达或订阅发生丢弃都视为变更。
func (r *Router) Dirty() bool {
	r.drain()
	return r.dirty.Load()
}

// MarkDirty 显式标记图需要重建
func (r *Router) MarkDirty() {
	r.dirty.Store(true)
}

func (r *Router) drain() {
	if r.sub == nil {
		return
	}
	for {
		select {
		case _, ok := <-r.sub.Out():
			if !ok {
				return
			}
			r.dirty.Store(true)
		default:
			if last, d := r.lastDropped.Load(), r.sub.Dropped(); d != last && r.lastDropped.CompareAndSwap(last, d) {
				r.dirty.Store(true)
			}
			return
		}
	}
}

// Load 从存储快照重建图
func (r *Router) Load() error {
	if r.closed.Load() {
		return ErrRouterClosed
	}

	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	r.drain()
	r.dirty.Store(false)

	g := buildGraph(r.store, r.version.Add(1))
	r.graph.Store(g)
	r.cache.purge()
	r.metrics.RecordReload(g.NodeCount(), g.EdgeCount())

	logger.Info("路由图已重建", "version", g.Version(), "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return nil
}

// Graph 返回当前图，未加载时为 nil
func (r *Router) Graph() *Graph {
	return r.graph.Load()
}

// SourceNode 在当前图中查找音源节点
func (r *Router) SourceNode(id types.SourceID) (*Node, bool) {
	g := r.graph.Load()
	if g == nil {
		return nil, false
	}
	return g.SourceNode(id)
}

// SinkNode 在当前图中查找音宿节点
func (r *Router) SinkNode(id types.SinkID) (*Node, bool) {
	g := r.graph.Load()
	if g == nil {
		return nil, false
	}
	return g.SinkNode(id)
}

// Close 取消订阅
func (r *Router) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cache.purge()
	if r.sub != nil {
		return r.sub.Close()
	}
	return nil
}

// ============================================================================
//                              查询
// ============================================================================

// GetRoute 查询从 sourceID 到 sinkID 的路由
//
// 端点未知返回 types.ErrNonExistent；没有可行路由返回 types.ErrNotPossible。
// maxPaths <= 0 时使用配置值，maxCycles < 0 表示不限制域重入。
func (r *Router) GetRoute(onlyFree bool, sourceID types.SourceID, sinkID types.SinkID, maxCycles, maxPaths int) ([]types.Route, error) {
	if r.closed.Load() {
		return nil, ErrRouterClosed
	}

	g, err := r.currentGraph()
	if err != nil {
		r.metrics.RecordQuery(resultError)
		return nil, err
	}

	src, ok := g.SourceNode(sourceID)
	if !ok {
		r.metrics.RecordQuery(resultNonExistent)
		return nil, fmt.Errorf("%w: source %d", types.ErrNonExistent, sourceID)
	}
	dst, ok := g.SinkNode(sinkID)
	if !ok {
		r.metrics.RecordQuery(resultNonExistent)
		return nil, fmt.Errorf("%w: sink %d", types.ErrNonExistent, sinkID)
	}

	if maxPaths <= 0 {
		maxPaths = r.config.MaxPaths
	}

	key := cacheKey{version: g.Version(), sourceID: sourceID, sinkID: sinkID, maxCycles: maxCycles, maxPaths: maxPaths}
	if !onlyFree && r.cache != nil {
		if routes, hit := r.cache.get(key); hit {
			r.metrics.RecordCache(true)
			r.metrics.RecordQuery(resultOK)
			return routes, nil
		}
		r.metrics.RecordCache(false)
	}

	routes, err := r.find(g, onlyFree, maxCycles, maxPaths, src, dst)
	if err != nil {
		return nil, err
	}
	if !onlyFree {
		r.cache.put(key, routes)
	}
	return routes, nil
}

// GetFirstNShortestPaths 在当前图上搜索，不触发重建
//
// srcNode 与 sinkNode 必须来自当前图（SourceNode/SinkNode）。
func (r *Router) GetFirstNShortestPaths(onlyFree bool, maxCycles, maxPaths int, srcNode, sinkNode *Node) ([]types.Route, error) {
	if r.closed.Load() {
		return nil, ErrRouterClosed
	}
	g := r.graph.Load()
	if g == nil {
		return nil, ErrNoGraph
	}
	if !g.owns(srcNode) || !g.owns(sinkNode) {
		return nil, fmt.Errorf("%w: %w", types.ErrNonExistent, ErrStaleNode)
	}
	if srcNode.Kind != NodeSource || sinkNode.Kind != NodeSink {
		return nil, fmt.Errorf("%w: expected source and sink nodes", types.ErrNonExistent)
	}
	if maxPaths <= 0 {
		maxPaths = r.config.MaxPaths
	}
	return r.find(g, onlyFree, maxCycles, maxPaths, srcNode, sinkNode)
}

func (r *Router) currentGraph() (*Graph, error) {
	g := r.graph.Load()
	if g == nil || (r.config.AutoReload && r.Dirty()) {
		if err := r.Load(); err != nil {
			return nil, err
		}
		g = r.graph.Load()
	}
	return g, nil
}

func (r *Router) find(g *Graph, onlyFree bool, maxCycles, maxPaths int, src, dst *Node) ([]types.Route, error) {
	p := searchParams{
		maxCycles: maxCycles,
		maxPaths:  maxPaths,
		maxHops:   r.config.MaxHops,
		chooser:   r.chooser,
		onlyFree:  onlyFree,
	}
	if onlyFree {
		p.busyFrom(r.store.ListConnections(), r.store.ListConnectionsReserved())
	}

	start := time.Now()
	routes := g.search(src, dst, p)
	r.metrics.ObserveSearch(time.Since(start))

	if len(routes) == 0 {
		r.metrics.RecordQuery(resultNotPossible)
		logger.Debug("没有可行路由", "sourceID", src.ID, "sinkID", dst.ID, "maxCycles", maxCycles, "onlyFree", onlyFree)
		return nil, fmt.Errorf("%w: no route from source %d to sink %d", types.ErrNotPossible, src.ID, dst.ID)
	}

	r.metrics.RecordQuery(resultOK)
	logger.Debug("路由搜索完成", "sourceID", src.ID, "sinkID", dst.ID, "routes", len(routes))
	return routes, nil
}

package routing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================================
//                              路由指标
// ============================================================================

const (
	resultOK          = "ok"
	resultNonExistent = "non_existent"
	resultNotPossible = "not_possible"
	resultError       = "error"
)

// Metrics 路由指标
//
// reg 为 nil 时指标不注册，仍可正常记录。
type Metrics struct {
	queries        *prometheus.CounterVec
	searchDuration prometheus.Histogram
	graphNodes     prometheus.Gauge
	graphEdges     prometheus.Gauge
	reloads        prometheus.Counter
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
}

// NewMetrics 创建指标收集器
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "queries_total",
			Help:      "Route queries by result.",
		}, []string{"result"}),
		searchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "search_duration_seconds",
			Help:      "Time spent searching the routing graph.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		graphNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "graph_nodes",
			Help:      "Nodes in the current routing graph.",
		}),
		graphEdges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "graph_edges",
			Help:      "Edges in the current routing graph.",
		}),
		reloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "graph_reloads_total",
			Help:      "Routing graph rebuilds.",
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "cache_hits_total",
			Help:      "Route cache hits.",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "routing",
			Name:      "cache_misses_total",
			Help:      "Route cache misses.",
		}),
	}
}

// RecordQuery 记录查询结果
func (m *Metrics) RecordQuery(result string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(result).Inc()
}

// ObserveSearch 记录搜索耗时
func (m *Metrics) ObserveSearch(d time.Duration) {
	if m == nil {
		return
	}
	m.searchDuration.Observe(d.Seconds())
}

// RecordReload 记录一次重建
func (m *Metrics) RecordReload(nodes, edges int) {
	if m == nil {
		return
	}
	m.reloads.Inc()
	m.graphNodes.Set(float64(nodes))
	m.graphEdges.Set(float64(edges))
}

// RecordCache 记录缓存命中
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

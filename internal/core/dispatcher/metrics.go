package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              分发指标
// ============================================================================

// 操作结果标签
const (
	resultDispatched = "dispatched"
	resultUntracked  = "untracked"
	resultRejected   = "rejected"
	resultFailed     = "failed"
)

// Metrics 分发指标，reg 为 nil 时不注册
type Metrics struct {
	operations          *prometheus.CounterVec
	acks                *prometheus.CounterVec
	staleAcks           prometheus.Counter
	admissionRejections prometheus.Counter
	activeHandles       prometheus.Gauge
}

// NewMetrics 创建指标收集器
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "dispatch",
			Name:      "operations_total",
			Help:      "Dispatched operations by type and result.",
		}, []string{"type", "result"}),
		acks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "dispatch",
			Name:      "acks_total",
			Help:      "Plugin acknowledgments by type and code.",
		}, []string{"type", "code"}),
		staleAcks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "dispatch",
			Name:      "stale_acks_total",
			Help:      "Acknowledgments for handles that were already terminal.",
		}),
		admissionRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: "audiomgr",
			Subsystem: "dispatch",
			Name:      "admission_rejections_total",
			Help:      "Operations rejected because the in-flight bound was reached.",
		}),
		activeHandles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "audiomgr",
			Subsystem: "dispatch",
			Name:      "active_handles",
			Help:      "Handles awaiting acknowledgment.",
		}),
	}
}

// RecordOperation 记录一次下发
func (m *Metrics) RecordOperation(typ types.HandleType, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(typ.String(), result).Inc()
}

// RecordAck 记录一次确认
func (m *Metrics) RecordAck(typ types.HandleType, code types.ErrorCode, stale bool) {
	if m == nil {
		return
	}
	m.acks.WithLabelValues(typ.String(), code.String()).Inc()
	if stale {
		m.staleAcks.Inc()
	}
}

// RecordRejection 记录准入拒绝
func (m *Metrics) RecordRejection() {
	if m == nil {
		return
	}
	m.admissionRejections.Inc()
}

// SetActive 更新活跃句柄数
func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.activeHandles.Set(float64(n))
}

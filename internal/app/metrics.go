package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dep2p/go-audiomgr/config"
)

// ============================================================================
//                              指标注册
// ============================================================================

// runtimeParams Build 取出的可选组件
type runtimeParams struct {
	fx.In

	Gatherer prometheus.Gatherer `optional:"true"`
	Server   *MetricsServer      `optional:"true"`
}

type registryResult struct {
	fx.Out

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// MetricsModule 指标模块
//
// 关闭时不提供 Registerer，各组件的指标不注册。reg 非 nil 时使用调用方的
// 注册器；reg 同时实现 Gatherer 时 HTTP 导出使用它。
func MetricsModule(cfg config.MetricsConfig, reg prometheus.Registerer) fx.Option {
	if !cfg.Enabled {
		return fx.Options()
	}

	opts := []fx.Option{
		fx.Provide(func() registryResult {
			if reg != nil {
				g, _ := reg.(prometheus.Gatherer)
				return registryResult{Registerer: reg, Gatherer: g}
			}
			r := prometheus.NewRegistry()
			r.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			return registryResult{Registerer: r, Gatherer: r}
		}),
	}
	if cfg.Addr != "" {
		opts = append(opts,
			fx.Provide(func(g prometheus.Gatherer) (*MetricsServer, error) {
				return NewMetricsServer(cfg.Addr, cfg.Path, g)
			}),
			fx.Invoke(registerMetricsServer),
		)
	}
	return fx.Module("metrics", opts...)
}

func registerMetricsServer(lc fx.Lifecycle, s *MetricsServer) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

// ============================================================================
//                              指标 HTTP 服务
// ============================================================================

// ErrNoGatherer 开启指标导出但注册器不可采集
var ErrNoGatherer = errors.New("app: metrics registerer is not a gatherer")

// MetricsServer 指标 HTTP 服务
type MetricsServer struct {
	addr     string
	path     string
	gatherer prometheus.Gatherer

	mu     sync.Mutex
	server *http.Server
	ln     net.Listener
}

// NewMetricsServer 创建指标服务，path 为空时使用 /metrics
func NewMetricsServer(addr, path string, g prometheus.Gatherer) (*MetricsServer, error) {
	if g == nil {
		return nil, ErrNoGatherer
	}
	if path == "" {
		path = "/metrics"
	}
	return &MetricsServer{addr: addr, path: path, gatherer: g}, nil
}

// Start 开始监听，已在运行时返回错误
func (s *MetricsServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("app: metrics server already running")
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("app: listen metrics on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务异常退出", "err", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", ln.Addr().String(), "path", s.path)
	return nil
}

// Addr 实际监听地址，未启动时返回配置值
func (s *MetricsServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Path 指标路径
func (s *MetricsServer) Path() string {
	return s.path
}

// Stop 关闭服务
func (s *MetricsServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.ln = nil
	return err
}

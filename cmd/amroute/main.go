// Package main 提供 amroute 命令行入口
//
// amroute 加载拓扑文件，批量查询路由并以 JSON 输出；-serve 模式下常驻
// 运行并通过 HTTP 导出指标。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	audiomgr "github.com/dep2p/go-audiomgr"
	"github.com/dep2p/go-audiomgr/config"
	"github.com/dep2p/go-audiomgr/internal/app"
	"github.com/dep2p/go-audiomgr/internal/core/entitystore"
	"github.com/dep2p/go-audiomgr/pkg/lib/log"
)

var logger = log.Logger("amroute")

// errUsage 参数错误，已输出用法
var errUsage = errors.New("usage error")

// cliOptions 命令行参数
type cliOptions struct {
	// ─────────────────────────────────────────────────────────────────────
	// 配置
	// ─────────────────────────────────────────────────────────────────────
	configFile  string
	preset      string
	logFile     string
	metricsAddr string
	quiet       bool

	// ─────────────────────────────────────────────────────────────────────
	// 输入
	// ─────────────────────────────────────────────────────────────────────
	topology string
	queries  string
	routes   string

	// ─────────────────────────────────────────────────────────────────────
	// 查询参数
	// ─────────────────────────────────────────────────────────────────────
	onlyFree bool
	maxPaths int
	parallel int

	// ─────────────────────────────────────────────────────────────────────
	// 模式
	// ─────────────────────────────────────────────────────────────────────
	serve       bool
	export      bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	o := &cliOptions{}
	fs := flag.NewFlagSet("amroute", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configFile, "config", "", "配置文件路径")
	fs.StringVar(&o.preset, "preset", "", "预设配置 (default/embedded/test)")
	fs.StringVar(&o.logFile, "log", "", "日志文件路径")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "指标 HTTP 监听地址，如 127.0.0.1:9102")
	fs.BoolVar(&o.quiet, "quiet", false, "只输出错误日志")

	fs.StringVar(&o.topology, "topology", "", "拓扑 JSON 文件")
	fs.StringVar(&o.queries, "queries", "", "查询 JSON 文件，- 表示标准输入")
	fs.StringVar(&o.routes, "route", "", "音源:音宿 列表，如 1:1,2:5")

	fs.BoolVar(&o.onlyFree, "only-free", false, "只使用未被连接占用的音源与音宿")
	fs.IntVar(&o.maxPaths, "max-paths", 0, "每条查询的最大路由数（0 = 配置值）")
	fs.IntVar(&o.parallel, "parallel", 4, "并发查询数")

	fs.BoolVar(&o.serve, "serve", false, "常驻运行直到收到退出信号")
	fs.BoolVar(&o.export, "export", false, "输出当前拓扑快照")
	fs.BoolVar(&o.showVersion, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "未知参数: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return nil, errUsage
	}
	return o, nil
}

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintf(stdout, "amroute %s\n", audiomgr.VersionInfo())
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	if o.serve {
		return serve(ctx, cfg, o)
	}
	return query(ctx, cfg, o, stdin, stdout)
}

// query 单次运行：导入拓扑、执行查询、输出结果
func query(ctx context.Context, cfg *config.Config, o *cliOptions, stdin io.Reader, stdout io.Writer) error {
	qs, err := collectQueries(o, stdin)
	if err != nil {
		return err
	}

	mgr, err := audiomgr.New(ctx, audiomgr.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	if o.topology != "" {
		f, err := os.Open(o.topology)
		if err != nil {
			return fmt.Errorf("打开拓扑文件失败: %w", err)
		}
		err = mgr.ImportTopology(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("导入拓扑失败: %w", err)
		}
	}

	if o.export {
		return writeJSON(stdout, mgr.ExportTopology())
	}

	for i := range qs {
		if o.onlyFree {
			qs[i].OnlyFree = true
		}
		if qs[i].MaxPaths == 0 {
			qs[i].MaxPaths = o.maxPaths
		}
	}

	results, err := runQueries(ctx, mgr, qs, cfg.Routing.MaxCycles, o.parallel)
	if err != nil {
		return err
	}
	logger.Info("查询完成", "queries", len(results))
	return writeResults(stdout, results)
}

func collectQueries(o *cliOptions, stdin io.Reader) ([]routeQuery, error) {
	var qs []routeQuery
	if o.routes != "" {
		pairs, err := parsePairs(o.routes)
		if err != nil {
			return nil, err
		}
		qs = append(qs, pairs...)
	}

	switch o.queries {
	case "":
	case "-":
		fromStdin, err := decodeQueries(stdin)
		if err != nil {
			return nil, err
		}
		qs = append(qs, fromStdin...)
	default:
		f, err := os.Open(o.queries)
		if err != nil {
			return nil, fmt.Errorf("打开查询文件失败: %w", err)
		}
		defer f.Close()
		fromFile, err := decodeQueries(f)
		if err != nil {
			return nil, err
		}
		qs = append(qs, fromFile...)
	}

	if len(qs) == 0 && !o.export {
		return nil, errors.New("没有查询：使用 -route 或 -queries")
	}
	return qs, nil
}

// serve 常驻运行
func serve(ctx context.Context, cfg *config.Config, o *cliOptions) error {
	a, err := app.RunApp(ctx, app.NewBootstrap(cfg))
	if err != nil {
		return err
	}

	if o.topology != "" {
		if err := importFile(a.Runtime().Store, o.topology); err != nil {
			_ = a.Stop()
			return err
		}
	}

	rt := a.Runtime()
	metricsAddr := ""
	if rt.Metrics != nil {
		metricsAddr = rt.Metrics.Addr()
	}
	logger.Info("amroute 已启动",
		"version", audiomgr.Version,
		"sources", len(rt.Store.ListSources()),
		"sinks", len(rt.Store.ListSinks()),
		"metricsAddr", metricsAddr)

	a.Wait(ctx)
	return a.Stop()
}

func importFile(s *entitystore.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开拓扑文件失败: %w", err)
	}
	defer f.Close()

	t, err := entitystore.DecodeTopology(f)
	if err != nil {
		return err
	}
	if err := s.Import(t); err != nil {
		return fmt.Errorf("导入拓扑失败: %w", err)
	}
	return nil
}

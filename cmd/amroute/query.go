package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              批量路由查询
// ============================================================================

// routeQuery 一条路由查询
type routeQuery struct {
	SourceID  types.SourceID `json:"source_id"`
	SinkID    types.SinkID   `json:"sink_id"`
	OnlyFree  bool           `json:"only_free,omitempty"`
	MaxPaths  int            `json:"max_paths,omitempty"`
	MaxCycles *int           `json:"max_cycles,omitempty"`
}

// routeResult 查询结果，与输入一一对应
type routeResult struct {
	SourceID types.SourceID `json:"source_id"`
	SinkID   types.SinkID   `json:"sink_id"`
	Routes   []types.Route  `json:"routes,omitempty"`
	Summary  []string       `json:"summary,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// routeFinder Manager 中查询所需的部分
type routeFinder interface {
	GetRouteWith(onlyFree bool, sourceID types.SourceID, sinkID types.SinkID, maxCycles, maxPaths int) ([]types.Route, error)
}

// decodeQueries 读取 JSON 数组形式的查询
func decodeQueries(r io.Reader) ([]routeQuery, error) {
	var qs []routeQuery
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&qs); err != nil {
		return nil, fmt.Errorf("decode queries: %w", err)
	}
	return qs, nil
}

// parsePairs 解析 "1:2,3:4" 形式的音源:音宿列表
func parsePairs(s string) ([]routeQuery, error) {
	var qs []routeQuery
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		src, sink, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid route pair %q, want source:sink", part)
		}
		srcID, err := strconv.ParseUint(strings.TrimSpace(src), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid source id in %q: %w", part, err)
		}
		sinkID, err := strconv.ParseUint(strings.TrimSpace(sink), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid sink id in %q: %w", part, err)
		}
		qs = append(qs, routeQuery{SourceID: types.SourceID(srcID), SinkID: types.SinkID(sinkID)})
	}
	return qs, nil
}

// runQueries 并发执行查询，结果保持输入顺序
//
// 单条查询失败记录在结果中，不影响其它查询。
func runQueries(ctx context.Context, f routeFinder, qs []routeQuery, defaultCycles, parallel int) ([]routeResult, error) {
	results := make([]routeResult, len(qs))

	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, q := range qs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cycles := defaultCycles
			if q.MaxCycles != nil {
				cycles = *q.MaxCycles
			}

			res := routeResult{SourceID: q.SourceID, SinkID: q.SinkID}
			routes, err := f.GetRouteWith(q.OnlyFree, q.SourceID, q.SinkID, cycles, q.MaxPaths)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Routes = routes
				for _, r := range routes {
					res.Summary = append(res.Summary, r.String())
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeResults 输出 JSON 结果
func writeResults(w io.Writer, results []routeResult) error {
	return writeJSON(w, results)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

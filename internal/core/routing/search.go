package routing

import (
	"slices"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              搜索参数
// ============================================================================

// searchParams 单次搜索的参数
type searchParams struct {
	maxCycles int
	maxPaths  int
	maxHops   int
	chooser   pkgif.FormatChooser

	// onlyFree 时非空：已参与连接的音源/音宿
	busySources map[types.SourceID]struct{}
	busySinks   map[types.SinkID]struct{}
	onlyFree    bool
}

// busyFrom 收集连接占用的端点
func (p *searchParams) busyFrom(conns ...[]types.Connection) {
	p.busySources = make(map[types.SourceID]struct{})
	p.busySinks = make(map[types.SinkID]struct{})
	for _, list := range conns {
		for _, c := range list {
			p.busySources[c.SourceID] = struct{}{}
			p.busySinks[c.SinkID] = struct{}{}
		}
	}
}

// ============================================================================
//                              搜索器
// ============================================================================

// searcher 一次查询的 DFS 状态，不可并发使用
type searcher struct {
	g        *Graph
	p        searchParams
	src, dst *Node

	limit   int // 当前深度的路径节点数
	visited []bool
	path    []*Node
	edges   []*Edge
	domains []types.DomainID

	routes []types.Route
}

// search 枚举 src 到 dst 的可行路由，按跳数从短到长
func (g *Graph) search(src, dst *Node, p searchParams) []types.Route {
	if src.Kind != NodeSource || dst.Kind != NodeSink || p.maxPaths <= 0 {
		return nil
	}

	s := &searcher{
		g:       g,
		p:       p,
		src:     src,
		dst:     dst,
		visited: make([]bool, len(g.nodes)),
		path:    make([]*Node, 0, 2*p.maxHops),
		edges:   make([]*Edge, 0, 2*p.maxHops),
		domains: []types.DomainID{src.DomainID},
	}
	if !s.usable(dst) {
		return nil
	}

	for hops := 1; hops <= p.maxHops && 2*hops <= len(g.nodes); hops++ {
		if s.full() {
			break
		}
		s.limit = 2 * hops
		s.dfs(src)
	}
	return s.routes
}

func (s *searcher) full() bool {
	return len(s.routes) >= s.p.maxPaths
}

// usable onlyFree 模式下，除查询音源外的节点不得参与已有连接
func (s *searcher) usable(n *Node) bool {
	if !s.p.onlyFree || n == s.src {
		return true
	}
	switch n.Kind {
	case NodeSource:
		_, busy := s.p.busySources[n.SourceID()]
		return !busy
	case NodeSink:
		_, busy := s.p.busySinks[n.SinkID()]
		return !busy
	}
	return false
}

func (s *searcher) dfs(n *Node) {
	if s.full() {
		return
	}

	s.path = append(s.path, n)
	s.visited[n.Index] = true
	defer func() {
		s.path = s.path[:len(s.path)-1]
		s.visited[n.Index] = false
	}()

	if n == s.dst {
		if len(s.path) == s.limit {
			s.emit()
		}
		return
	}
	if len(s.path) >= s.limit {
		return
	}

	for _, e := range s.g.adj[n.Index] {
		next := s.g.nodes[e.To]
		if s.visited[next.Index] || !s.usable(next) {
			continue
		}

		pushed := false
		if e.Kind != EdgeDirect && next.DomainID != s.domains[len(s.domains)-1] {
			if !ShouldGoInDomain(s.domains, next.DomainID, s.p.maxCycles) {
				continue
			}
			s.domains = append(s.domains, next.DomainID)
			pushed = true
		}

		s.edges = append(s.edges, e)
		s.dfs(next)
		s.edges = s.edges[:len(s.edges)-1]
		if pushed {
			s.domains = s.domains[:len(s.domains)-1]
		}

		if s.full() {
			return
		}
	}
}

// emit 为当前路径分配格式，成功则记录路由
func (s *searcher) emit() {
	hops := len(s.path) / 2
	formats := make([]types.ConnectionFormat, hops)
	if !s.assign(0, nil, formats) {
		logger.Debug("路径没有可行的格式组合", "hops", hops)
		return
	}

	route := types.Route{
		SourceID: s.src.SourceID(),
		SinkID:   s.dst.SinkID(),
		Elements: make([]types.RoutingElement, hops),
	}
	for i := 0; i < hops; i++ {
		src, sink := s.path[2*i], s.path[2*i+1]
		route.Elements[i] = types.RoutingElement{
			SourceID: src.SourceID(),
			SinkID:   sink.SinkID(),
			DomainID: src.DomainID,
			Format:   formats[i],
		}
	}

	if slices.ContainsFunc(s.routes, route.Equal) {
		return
	}
	s.routes = append(s.routes, route)
}

// assign 回溯为第 i 跳选择格式
//
// allowed 为上一跳格式经转换矩阵后允许的输出，第 0 跳不受限制。
func (s *searcher) assign(i int, allowed []types.ConnectionFormat, out []types.ConnectionFormat) bool {
	hop := s.edges[2*i]
	candidates := hop.Formats
	if i > 0 {
		candidates = make([]types.ConnectionFormat, 0, len(hop.Formats))
		for _, f := range hop.Formats {
			if slices.Contains(allowed, f) {
				candidates = append(candidates, f)
			}
		}
	}
	if len(candidates) == 0 {
		return false
	}

	src, sink := s.g.nodes[hop.From], s.g.nodes[hop.To]
	for _, f := range orderCandidates(s.p.chooser, src.SourceID(), sink.SinkID(), candidates) {
		out[i] = f
		if i == len(out)-1 {
			return true
		}
		if s.assign(i+1, s.edges[2*i+1].outputsFor(f), out) {
			return true
		}
	}
	return false
}

package routing

import (
	"fmt"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              节点与边
// ============================================================================

// NodeKind 节点类型
type NodeKind uint8

const (
	// NodeSource 音源节点
	NodeSource NodeKind = iota + 1
	// NodeSink 音宿节点
	NodeSink
)

func (k NodeKind) String() string {
	switch k {
	case NodeSource:
		return "source"
	case NodeSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Node 图节点，对应一个音源或音宿
type Node struct {
	Index    int
	Kind     NodeKind
	ID       uint16
	DomainID types.DomainID
	Formats  []types.ConnectionFormat
}

// SourceID 音源节点的 ID
func (n *Node) SourceID() types.SourceID { return types.SourceID(n.ID) }

// SinkID 音宿节点的 ID
func (n *Node) SinkID() types.SinkID { return types.SinkID(n.ID) }

func (n *Node) String() string {
	return fmt.Sprintf("%s(%d)@%d", n.Kind, n.ID, n.DomainID)
}

// EdgeKind 边类型
type EdgeKind uint8

const (
	// EdgeDirect 同域音源到音宿
	EdgeDirect EdgeKind = iota + 1
	// EdgeGateway 网关音宿到网关音源
	EdgeGateway
	// EdgeConverter 转换器音宿到转换器音源
	EdgeConverter
)

// Edge 有向边
//
// 直连边携带可用格式（音源顺序）；转换边携带矩阵展开后的格式对，
// SinkSide[i] 进入、SourceSide[i] 输出。
type Edge struct {
	From, To int
	Kind     EdgeKind
	// ElementID 网关或转换器 ID，直连边为 0
	ElementID uint16

	Formats []types.ConnectionFormat

	SinkSide   []types.ConnectionFormat
	SourceSide []types.ConnectionFormat
}

// outputsFor 返回输入格式为 in 时转换边可输出的格式
func (e *Edge) outputsFor(in types.ConnectionFormat) []types.ConnectionFormat {
	var out []types.ConnectionFormat
	for i, f := range e.SinkSide {
		if f == in {
			out = append(out, e.SourceSide[i])
		}
	}
	return out
}

// ============================================================================
//                              Graph
// ============================================================================

// Graph 拓扑快照构建出的只读图
type Graph struct {
	version uint64
	nodes   []*Node
	adj     [][]*Edge
	edges   int

	sources map[types.SourceID]*Node
	sinks   map[types.SinkID]*Node
}

// Version 图版本，每次 Load 递增
func (g *Graph) Version() uint64 { return g.version }

// NodeCount 节点数
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount 边数
func (g *Graph) EdgeCount() int { return g.edges }

// SourceNode 查找音源节点
func (g *Graph) SourceNode(id types.SourceID) (*Node, bool) {
	n, ok := g.sources[id]
	return n, ok
}

// SinkNode 查找音宿节点
func (g *Graph) SinkNode(id types.SinkID) (*Node, bool) {
	n, ok := g.sinks[id]
	return n, ok
}

// Edges 返回从节点出发的边
func (g *Graph) Edges(n *Node) []*Edge {
	if !g.owns(n) {
		return nil
	}
	return g.adj[n.Index]
}

func (g *Graph) owns(n *Node) bool {
	return n != nil && n.Index >= 0 && n.Index < len(g.nodes) && g.nodes[n.Index] == n
}

func (g *Graph) addNode(kind NodeKind, id uint16, domain types.DomainID, formats []types.ConnectionFormat) *Node {
	n := &Node{Index: len(g.nodes), Kind: kind, ID: id, DomainID: domain, Formats: formats}
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return n
}

func (g *Graph) addEdge(e *Edge) {
	g.adj[e.From] = append(g.adj[e.From], e)
	g.edges++
}

// ============================================================================
//                              构图
// ============================================================================

// buildGraph 从拓扑快照构图
//
// 节点顺序：音源按 ID 升序，其后音宿按 ID 升序。边的顺序与之相同，
// 保证同一快照的搜索结果确定。
func buildGraph(topo pkgif.TopologyReader, version uint64) *Graph {
	g := &Graph{
		version: version,
		sources: make(map[types.SourceID]*Node),
		sinks:   make(map[types.SinkID]*Node),
	}

	for _, s := range topo.ListSources() {
		g.sources[s.ID] = g.addNode(NodeSource, uint16(s.ID), s.DomainID, s.Formats)
	}
	sinks := topo.ListSinks()
	for _, s := range sinks {
		g.sinks[s.ID] = g.addNode(NodeSink, uint16(s.ID), s.DomainID, s.Formats)
	}

	// 直连边
	for _, src := range g.nodes {
		if src.Kind != NodeSource {
			continue
		}
		for _, s := range sinks {
			sink := g.sinks[s.ID]
			if sink.DomainID != src.DomainID {
				continue
			}
			formats := types.IntersectFormats(src.Formats, sink.Formats)
			if len(formats) == 0 {
				continue
			}
			g.addEdge(&Edge{From: src.Index, To: sink.Index, Kind: EdgeDirect, Formats: formats})
		}
	}

	// 转换边
	for _, gw := range topo.ListGateways() {
		g.addConversion(EdgeGateway, uint16(gw.ID), gw.Conversion)
	}
	for _, cv := range topo.ListConverters() {
		g.addConversion(EdgeConverter, uint16(cv.ID), cv.Conversion)
	}

	return g
}

func (g *Graph) addConversion(kind EdgeKind, id uint16, conv types.Conversion) {
	sink, ok := g.sinks[conv.SinkID]
	if !ok {
		logger.Warn("转换元件的音宿不存在，跳过", "kind", kind, "id", id, "sinkID", conv.SinkID)
		return
	}
	source, ok := g.sources[conv.SourceID]
	if !ok {
		logger.Warn("转换元件的音源不存在，跳过", "kind", kind, "id", id, "sourceID", conv.SourceID)
		return
	}

	srcSide, sinkSide, ok := AllowedFormatsFromConvMatrix(conv.Matrix, conv.SourceFormats, conv.SinkFormats)
	if !ok {
		logger.Warn("转换矩阵尺寸无效，跳过", "kind", kind, "id", id)
		return
	}
	if len(srcSide) == 0 {
		logger.Debug("转换矩阵没有允许的格式对", "kind", kind, "id", id)
		return
	}

	g.addEdge(&Edge{
		From:       sink.Index,
		To:         source.Index,
		Kind:       kind,
		ElementID:  id,
		SinkSide:   sinkSide,
		SourceSide: srcSide,
	})
}

func (k EdgeKind) String() string {
	switch k {
	case EdgeDirect:
		return "direct"
	case EdgeGateway:
		return "gateway"
	case EdgeConverter:
		return "converter"
	default:
		return "unknown"
	}
}

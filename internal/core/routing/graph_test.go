package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// fakeTopology 绕过存储校验，直接提供记录
type fakeTopology struct {
	sources    []types.Source
	sinks      []types.Sink
	gateways   []types.Gateway
	converters []types.Converter
}

func (f *fakeTopology) ListDomains() []types.Domain       { return nil }
func (f *fakeTopology) ListSources() []types.Source       { return f.sources }
func (f *fakeTopology) ListSinks() []types.Sink           { return f.sinks }
func (f *fakeTopology) ListGateways() []types.Gateway     { return f.gateways }
func (f *fakeTopology) ListConverters() []types.Converter { return f.converters }
func (f *fakeTopology) GetSource(types.SourceID) (types.Source, error) {
	return types.Source{}, types.ErrNonExistent
}
func (f *fakeTopology) GetSink(types.SinkID) (types.Sink, error) {
	return types.Sink{}, types.ErrNonExistent
}

func TestBuildGraph_Edges(t *testing.T) {
	topo := &fakeTopology{
		sources: []types.Source{
			{ID: 1, DomainID: 1, Formats: []types.ConnectionFormat{types.FormatStereo, types.FormatMono}},
			{ID: 2, DomainID: 2, Formats: cfStereo},
		},
		sinks: []types.Sink{
			{ID: 1, DomainID: 1, Formats: []types.ConnectionFormat{types.FormatMono, types.FormatStereo}},
			{ID: 2, DomainID: 1, Formats: cfAnalog},
			{ID: 3, DomainID: 2, Formats: cfStereo},
		},
		gateways: []types.Gateway{
			{ID: 1, Conversion: types.Conversion{SinkID: 1, SourceID: 2, SinkFormats: cfStereo, SourceFormats: cfStereo, Matrix: identity}},
			// 矩阵尺寸错误
			{ID: 2, Conversion: types.Conversion{SinkID: 1, SourceID: 2, SinkFormats: cfStereo, SourceFormats: cfStereo, Matrix: []bool{true, true}}},
			// 没有允许的格式对
			{ID: 3, Conversion: types.Conversion{SinkID: 1, SourceID: 2, SinkFormats: cfStereo, SourceFormats: cfStereo, Matrix: []bool{false}}},
			// 端点不存在
			{ID: 4, Conversion: types.Conversion{SinkID: 9, SourceID: 2, SinkFormats: cfStereo, SourceFormats: cfStereo, Matrix: identity}},
		},
	}

	g := buildGraph(topo, 7)
	assert.Equal(t, uint64(7), g.Version())
	assert.Equal(t, 5, g.NodeCount())
	// source1->sink1, source2->sink3, gateway1
	assert.Equal(t, 3, g.EdgeCount())

	src1, ok := g.SourceNode(1)
	require.True(t, ok)
	edges := g.Edges(src1)
	require.Len(t, edges, 1)
	assert.Equal(t, EdgeDirect, edges[0].Kind)
	// 交集保持音源顺序
	assert.Equal(t, []types.ConnectionFormat{types.FormatStereo, types.FormatMono}, edges[0].Formats)

	sink1, ok := g.SinkNode(1)
	require.True(t, ok)
	edges = g.Edges(sink1)
	require.Len(t, edges, 1)
	assert.Equal(t, EdgeGateway, edges[0].Kind)
	assert.Equal(t, uint16(1), edges[0].ElementID)

	_, ok = g.SinkNode(9)
	assert.False(t, ok)
	assert.Nil(t, g.Edges(&Node{Index: 0}))
}

func TestEdge_OutputsFor(t *testing.T) {
	e := &Edge{
		SinkSide:   []types.ConnectionFormat{types.FormatMono, types.FormatAuto, types.FormatMono},
		SourceSide: []types.ConnectionFormat{types.FormatAnalog, types.FormatStereo, types.FormatStereo},
	}
	assert.Equal(t, []types.ConnectionFormat{types.FormatAnalog, types.FormatStereo}, e.outputsFor(types.FormatMono))
	assert.Empty(t, e.outputsFor(types.FormatStereo))
}

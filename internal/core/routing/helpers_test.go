package routing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-audiomgr/internal/core/entitystore"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

var (
	cfMono   = []types.ConnectionFormat{types.FormatMono}
	cfStereo = []types.ConnectionFormat{types.FormatStereo}
	cfAnalog = []types.ConnectionFormat{types.FormatAnalog}
	cfAuto   = []types.ConnectionFormat{types.FormatAuto}
	identity = []bool{true}
)

// topoBuilder 在实体存储中搭建测试拓扑
type topoBuilder struct {
	t     *testing.T
	store *entitystore.Store
}

func newTopo(t *testing.T) *topoBuilder {
	t.Helper()
	return newTopoOnBus(t, nil)
}

// newTopoOnBus 存储的变更事件发往 bus
func newTopoOnBus(t *testing.T, bus pkgif.EventBus) *topoBuilder {
	t.Helper()
	s, err := entitystore.New(bus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &topoBuilder{t: t, store: s}
}

func (b *topoBuilder) domain(name string) types.DomainID {
	b.t.Helper()
	id, err := b.store.EnterDomain(types.Domain{Name: name})
	require.NoError(b.t, err)
	return id
}

func (b *topoBuilder) source(name string, d types.DomainID, formats []types.ConnectionFormat) types.SourceID {
	b.t.Helper()
	id, err := b.store.EnterSource(types.Source{Name: name, DomainID: d, Formats: formats})
	require.NoError(b.t, err)
	return id
}

func (b *topoBuilder) sink(name string, d types.DomainID, formats []types.ConnectionFormat) types.SinkID {
	b.t.Helper()
	id, err := b.store.EnterSink(types.Sink{Name: name, DomainID: d, Formats: formats})
	require.NoError(b.t, err)
	return id
}

// gateway 参数顺序：出口域、入口域、出口格式、入口格式、矩阵、出口音源、入口音宿
func (b *topoBuilder) gateway(name string, sourceDomain, sinkDomain types.DomainID,
	sourceFormats, sinkFormats []types.ConnectionFormat, matrix []bool,
	sourceID types.SourceID, sinkID types.SinkID) types.GatewayID {
	b.t.Helper()
	id, err := b.store.EnterGateway(types.Gateway{
		Name:            name,
		SourceDomainID:  sourceDomain,
		SinkDomainID:    sinkDomain,
		ControlDomainID: sinkDomain,
		Conversion: types.Conversion{
			SourceID:      sourceID,
			SinkID:        sinkID,
			SourceFormats: sourceFormats,
			SinkFormats:   sinkFormats,
			Matrix:        matrix,
		},
	})
	require.NoError(b.t, err)
	return id
}

func (b *topoBuilder) converter(name string, d types.DomainID,
	sourceFormats, sinkFormats []types.ConnectionFormat, matrix []bool,
	sourceID types.SourceID, sinkID types.SinkID) types.ConverterID {
	b.t.Helper()
	id, err := b.store.EnterConverter(types.Converter{
		Name:     name,
		DomainID: d,
		Conversion: types.Conversion{
			SourceID:      sourceID,
			SinkID:        sinkID,
			SourceFormats: sourceFormats,
			SinkFormats:   sinkFormats,
			Matrix:        matrix,
		},
	})
	require.NoError(b.t, err)
	return id
}

func (b *topoBuilder) router(opts ...Option) *Router {
	b.t.Helper()
	r, err := NewRouter(DefaultConfig(), b.store, nil, opts...)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = r.Close() })
	return r
}

func hop(src types.SourceID, sink types.SinkID, d types.DomainID, f types.ConnectionFormat) types.RoutingElement {
	return types.RoutingElement{SourceID: src, SinkID: sink, DomainID: d, Format: f}
}

func containsRoute(routes []types.Route, want types.Route) bool {
	for _, r := range routes {
		if r.Equal(want) {
			return true
		}
	}
	return false
}

// gwCycles 三个域，d1 与 d2 之间双向各两个网关，d1 经 gw5 到 d3
type gwCycles struct {
	d1, d2, d3 types.DomainID
	source1    types.SourceID
	sink1      types.SinkID
	gw2Sink    types.SinkID
	gw2Source  types.SourceID
	gw3Sink    types.SinkID
	gw3Source  types.SourceID
	gw4Sink    types.SinkID
	gw4Source  types.SourceID
	gw5Sink    types.SinkID
	gw5Source  types.SourceID
}

// buildGwCycles variant2 为 true 时搭建格式受限版本：
// source1 仅 MONO，只能经 gw2 进入 d2，d3 侧为 AUTO。
func buildGwCycles(b *topoBuilder, variant2 bool) gwCycles {
	var g gwCycles
	g.d1 = b.domain("domain1")
	g.d2 = b.domain("domain2")
	g.d3 = b.domain("domain3")

	srcFormats, gw2SinkFormats, d3Formats := cfStereo, cfStereo, cfStereo
	if variant2 {
		srcFormats, gw2SinkFormats, d3Formats = cfMono, cfMono, cfAuto
	}

	g.source1 = b.source("source1", g.d1, srcFormats)
	gw1Sink := b.sink("gw1Sink", g.d1, cfStereo)
	g.gw2Sink = b.sink("gw2Sink", g.d1, gw2SinkFormats)
	g.gw3Source = b.source("gw3Source", g.d1, cfStereo)
	g.gw4Source = b.source("gw4Source", g.d1, cfStereo)
	g.gw5Sink = b.sink("gw5Sink", g.d1, cfStereo)

	gw1Source := b.source("gw1Source", g.d2, cfStereo)
	g.gw2Source = b.source("gw2Source", g.d2, cfStereo)
	g.gw3Sink = b.sink("gw3Sink", g.d2, cfStereo)
	g.gw4Sink = b.sink("gw4Sink", g.d2, cfStereo)

	g.gw5Source = b.source("gw5Source", g.d3, d3Formats)
	g.sink1 = b.sink("sink1", g.d3, d3Formats)

	b.gateway("gateway1", g.d2, g.d1, cfStereo, cfStereo, identity, gw1Source, gw1Sink)
	b.gateway("gateway2", g.d2, g.d1, cfStereo, gw2SinkFormats, identity, g.gw2Source, g.gw2Sink)
	b.gateway("gateway3", g.d1, g.d2, cfStereo, cfStereo, identity, g.gw3Source, g.gw3Sink)
	b.gateway("gateway4", g.d1, g.d2, cfStereo, cfStereo, identity, g.gw4Source, g.gw4Sink)
	b.gateway("gateway5", g.d3, g.d1, d3Formats, cfStereo, identity, g.gw5Source, g.gw5Sink)
	return g
}

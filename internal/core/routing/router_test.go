package routing

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-audiomgr/internal/core/eventbus"
	"github.com/dep2p/go-audiomgr/pkg/types"
	"github.com/dep2p/go-audiomgr/tests/mocks"
)

// ============================================================================
//                              基本路由
// ============================================================================

func TestRouter_SingleDomainDirect(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, []types.ConnectionFormat{types.FormatMono, types.FormatAnalog})
	sink := b.sink("sink", d, []types.ConnectionFormat{types.FormatAnalog, types.FormatStereo})

	r := b.router()
	routes, err := r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	want := types.Route{SourceID: src, SinkID: sink, Elements: []types.RoutingElement{hop(src, sink, d, types.FormatAnalog)}}
	assert.True(t, routes[0].Equal(want), "got %s", routes[0])
}

func TestRouter_TwoDomainsThroughGateway(t *testing.T) {
	b := newTopo(t)
	d1 := b.domain("domain1")
	d2 := b.domain("domain2")
	src := b.source("source", d1, cfAnalog)
	gwSource := b.source("gwSource", d2, cfMono)
	sink := b.sink("sink", d2, cfMono)
	gwSink := b.sink("gwSink", d1, cfAnalog)
	b.gateway("gateway", d2, d1, cfMono, cfAnalog, identity, gwSource, gwSink)

	routes, err := b.router().GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	want := types.Route{SourceID: src, SinkID: sink, Elements: []types.RoutingElement{
		hop(src, gwSink, d1, types.FormatAnalog),
		hop(gwSource, sink, d2, types.FormatMono),
	}}
	assert.True(t, routes[0].Equal(want), "got %s", routes[0])
}

func TestRouter_UnknownEndpoints(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)
	sink := b.sink("sink", d, cfStereo)
	r := b.router()

	_, err := r.GetRoute(false, src+50, sink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNonExistent)

	_, err = r.GetRoute(false, src, sink+50, 0, 0)
	assert.ErrorIs(t, err, types.ErrNonExistent)
}

func TestRouter_NoCommonFormat(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)
	sink := b.sink("sink", d, cfMono)

	_, err := b.router().GetRoute(false, src, sink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNotPossible)
	assert.NotErrorIs(t, err, types.ErrNonExistent)
}

func TestRouter_OnlyFree(t *testing.T) {
	b := newTopo(t)
	d1 := b.domain("domain1")
	d2 := b.domain("domain2")
	src := b.source("source", d1, cfAnalog)
	gwSource := b.source("gwSource", d2, cfMono)
	sink := b.sink("sink", d2, cfMono)
	gwSink := b.sink("gwSink", d1, cfAnalog)
	b.gateway("gateway", d2, d1, cfMono, cfAnalog, identity, gwSource, gwSink)

	_, err := b.store.EnterConnection(types.Connection{SourceID: src, SinkID: gwSink, Format: types.FormatAnalog})
	require.NoError(t, err)
	id, err := b.store.EnterConnection(types.Connection{SourceID: gwSource, SinkID: sink, Format: types.FormatMono})
	require.NoError(t, err)
	require.NoError(t, b.store.ChangeConnectionFinal(id))

	r := b.router()
	_, err = r.GetRoute(true, src, sink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNotPossible)

	routes, err := r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestRouter_OnlyFreeIgnoresQuerySource(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)
	busySink := b.sink("busy", d, cfStereo)
	sink := b.sink("sink", d, cfStereo)

	_, err := b.store.EnterConnection(types.Connection{SourceID: src, SinkID: busySink, Format: types.FormatStereo})
	require.NoError(t, err)

	r := b.router()
	routes, err := r.GetRoute(true, src, sink, 0, 0)
	require.NoError(t, err)
	assert.Len(t, routes, 1)

	_, err = r.GetRoute(true, src, busySink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNotPossible)
}

// ============================================================================
//                              域环路
// ============================================================================

func TestRouter_GatewayCycles(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, false)
	r := b.router()

	routes, err := r.GetRoute(false, g.source1, g.sink1, -1, 10)
	require.NoError(t, err)
	assert.Len(t, routes, 9)

	routes, err = r.GetRoute(false, g.source1, g.sink1, 1, 10)
	require.NoError(t, err)
	assert.Len(t, routes, 5)

	routes, err = r.GetRoute(false, g.source1, g.sink1, 0, 10)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	want := types.Route{SourceID: g.source1, SinkID: g.sink1, Elements: []types.RoutingElement{
		hop(g.source1, g.gw5Sink, g.d1, types.FormatStereo),
		hop(g.gw5Source, g.sink1, g.d3, types.FormatStereo),
	}}
	assert.True(t, routes[0].Equal(want), "got %s", routes[0])
}

func TestRouter_GatewayCyclesShortestFirst(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, false)

	routes, err := b.router().GetRoute(false, g.source1, g.sink1, -1, 10)
	require.NoError(t, err)
	for i := 1; i < len(routes); i++ {
		assert.LessOrEqual(t, routes[i-1].Hops(), routes[i].Hops())
	}
	assert.Equal(t, 2, routes[0].Hops())
	assert.Equal(t, 6, routes[len(routes)-1].Hops())
}

func TestRouter_MaxPathsLimits(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, false)

	routes, err := b.router().GetRoute(false, g.source1, g.sink1, -1, 3)
	require.NoError(t, err)
	assert.Len(t, routes, 3)
}

func TestRouter_GatewayCyclesFormatRestricted(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, true)
	r := b.router()

	_, err := r.GetRoute(false, g.source1, g.sink1, 0, 10)
	assert.ErrorIs(t, err, types.ErrNotPossible)

	routes, err := r.GetRoute(false, g.source1, g.sink1, 1, 10)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	for _, via := range []struct {
		sink   types.SinkID
		source types.SourceID
	}{{g.gw3Sink, g.gw3Source}, {g.gw4Sink, g.gw4Source}} {
		want := types.Route{SourceID: g.source1, SinkID: g.sink1, Elements: []types.RoutingElement{
			hop(g.source1, g.gw2Sink, g.d1, types.FormatMono),
			hop(g.gw2Source, via.sink, g.d2, types.FormatStereo),
			hop(via.source, g.gw5Sink, g.d1, types.FormatStereo),
			hop(g.gw5Source, g.sink1, g.d3, types.FormatAuto),
		}}
		assert.True(t, containsRoute(routes, want), "missing %s", want)
	}
}

func TestRouter_GatewaysAndConverters(t *testing.T) {
	b := newTopo(t)
	d1 := b.domain("domain1")
	d2 := b.domain("domain2")
	d3 := b.domain("domain3")

	source := b.source("source1", d1, cfStereo)
	gwSink1 := b.sink("gwSink1", d1, cfStereo)
	gwSink21 := b.sink("gwSink21", d1, cfStereo)
	gwSource1 := b.source("gwSource1", d2, cfMono)
	gwSink22 := b.sink("gwSink22", d2, cfMono)
	gwSource21 := b.source("gwSource21", d3, cfAuto)
	gwSource22 := b.source("gwSource22", d3, cfAuto)
	cSource5 := b.source("cSource5", d3, cfStereo)
	cSink5 := b.sink("cSink5", d3, cfAnalog)
	cSource3 := b.source("cSource3", d3, cfAnalog)
	cSink3 := b.sink("cSink3", d3, cfAuto)
	cSource4 := b.source("cSource4", d3, cfStereo)
	cSink4 := b.sink("cSink4", d3, cfAnalog)
	sink := b.sink("sink1", d3, cfStereo)

	b.gateway("gateway1", d2, d1, cfMono, cfStereo, identity, gwSource1, gwSink1)
	b.gateway("gateway22", d3, d2, cfAuto, cfMono, identity, gwSource22, gwSink22)
	b.gateway("gateway21", d3, d1, cfAuto, cfStereo, identity, gwSource21, gwSink21)
	b.converter("converter1", d3, cfAnalog, cfAuto, identity, cSource3, cSink3)
	b.converter("converter2", d3, cfStereo, cfAnalog, identity, cSource4, cSink4)
	b.converter("converter3", d3, cfStereo, cfAnalog, identity, cSource5, cSink5)

	routes, err := b.router().GetRoute(false, source, sink, 0, 0)
	require.NoError(t, err)
	require.Len(t, routes, 4)

	viaD2 := []types.RoutingElement{
		hop(source, gwSink1, d1, types.FormatStereo),
		hop(gwSource1, gwSink22, d2, types.FormatMono),
		hop(gwSource22, cSink3, d3, types.FormatAuto),
	}
	direct := []types.RoutingElement{
		hop(source, gwSink21, d1, types.FormatStereo),
		hop(gwSource21, cSink3, d3, types.FormatAuto),
	}
	tail4 := []types.RoutingElement{
		hop(cSource3, cSink4, d3, types.FormatAnalog),
		hop(cSource4, sink, d3, types.FormatStereo),
	}
	tail5 := []types.RoutingElement{
		hop(cSource3, cSink5, d3, types.FormatAnalog),
		hop(cSource5, sink, d3, types.FormatStereo),
	}

	for _, head := range [][]types.RoutingElement{viaD2, direct} {
		for _, tail := range [][]types.RoutingElement{tail4, tail5} {
			elems := append(append([]types.RoutingElement{}, head...), tail...)
			want := types.Route{SourceID: source, SinkID: sink, Elements: elems}
			assert.True(t, containsRoute(routes, want), "missing %s", want)
		}
	}
	// 较短的两条在前
	assert.Equal(t, 4, routes[0].Hops())
	assert.Equal(t, 4, routes[1].Hops())
}

// ============================================================================
//                              格式选择
// ============================================================================

func TestRouter_FormatBacktracking(t *testing.T) {
	b := newTopo(t)
	d1 := b.domain("domain1")
	d2 := b.domain("domain2")
	both := []types.ConnectionFormat{types.FormatMono, types.FormatStereo}

	src := b.source("source", d1, both)
	gwSink := b.sink("gwSink", d1, both)
	gwSource := b.source("gwSource", d2, cfAnalog)
	sink := b.sink("sink", d2, cfAnalog)
	// 只有 STEREO 能转换为 ANALOG
	b.gateway("gateway", d2, d1, cfAnalog, both, []bool{false, true}, gwSource, gwSink)

	routes, err := b.router().GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, types.FormatStereo, routes[0].Elements[0].Format)
	assert.Equal(t, types.FormatAnalog, routes[0].Elements[1].Format)
}

func TestRouter_FormatChooser(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	both := []types.ConnectionFormat{types.FormatAnalog, types.FormatStereo}
	src := b.source("source", d, both)
	sink := b.sink("sink", d, both)

	routes, err := b.router(WithFormatChooser(reverseChooser{})).GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, types.FormatStereo, routes[0].Elements[0].Format)

	none := chooserFunc(func([]types.ConnectionFormat) []types.ConnectionFormat { return nil })
	_, err = b.router(WithFormatChooser(none)).GetRoute(false, src, sink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNotPossible)
}

func TestRouter_MaxHops(t *testing.T) {
	b := newTopo(t)
	d1 := b.domain("domain1")
	d2 := b.domain("domain2")
	src := b.source("source", d1, cfStereo)
	gwSink := b.sink("gwSink", d1, cfStereo)
	gwSource := b.source("gwSource", d2, cfStereo)
	sink := b.sink("sink", d2, cfStereo)
	b.gateway("gateway", d2, d1, cfStereo, cfStereo, identity, gwSource, gwSink)

	cfg := DefaultConfig()
	cfg.MaxHops = 1
	r, err := NewRouter(cfg, b.store, nil)
	require.NoError(t, err)

	_, err = r.GetRoute(false, src, sink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNotPossible)
}

// ============================================================================
//                              图生命周期
// ============================================================================

func TestRouter_DirtyAndReload(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)

	// 未订阅总线，只能显式标记
	r, err := NewRouter(DefaultConfig(), b.store, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Dirty(), "new router starts dirty")
	require.NoError(t, r.Load())
	assert.False(t, r.Dirty())
	v1 := r.Graph().Version()

	sink := b.sink("sink", d, cfStereo)
	assert.False(t, r.Dirty())
	_, err = r.GetRoute(false, src, sink, 0, 0)
	assert.ErrorIs(t, err, types.ErrNonExistent)

	r.MarkDirty()
	routes, err := r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
	assert.Greater(t, r.Graph().Version(), v1)
}

func TestRouter_TopologyEventsMarkDirty(t *testing.T) {
	bus := eventbus.NewBus()
	b := newTopoOnBus(t, bus)
	store := b.store

	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)

	r, err := NewRouter(DefaultConfig(), store, bus)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Load())
	assert.False(t, r.Dirty())

	sink := b.sink("sink", d, cfStereo)
	assert.True(t, r.Dirty())

	routes, err := r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
	assert.False(t, r.Dirty())
}

func TestRouter_SubscriptionOverflow(t *testing.T) {
	bus := mocks.NewMockEventBus()
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)
	sink := b.sink("sink", d, cfStereo)

	cfg := DefaultConfig()
	cfg.SubscriptionBuffer = 1
	r, err := NewRouter(cfg, b.store, bus)
	require.NoError(t, err)
	require.Equal(t, 1, bus.GetSubscribers(new(types.EvtTopologyChanged)))

	require.NoError(t, r.Load())
	assert.False(t, r.Dirty())

	for i := 0; i < 3; i++ {
		bus.EmitEvent(new(types.EvtTopologyChanged), types.EvtTopologyChanged{})
	}
	assert.True(t, r.Dirty())

	routes, err := r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
	assert.False(t, r.Dirty(), "dropped count already observed")

	require.NoError(t, r.Close())
	assert.Equal(t, 0, bus.GetSubscribers(new(types.EvtTopologyChanged)))
}

func TestRouter_NoAutoReload(t *testing.T) {
	bus := eventbus.NewBus()
	b := newTopoOnBus(t, bus)
	store := b.store

	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)

	cfg := DefaultConfig()
	cfg.AutoReload = false
	r, err := NewRouter(cfg, store, bus)
	require.NoError(t, err)
	defer r.Close()

	sink := b.sink("sink", d, cfStereo)
	// 首次查询总会构图
	_, err = r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)

	sink2 := b.sink("sink2", d, cfStereo)
	_, err = r.GetRoute(false, src, sink2, 0, 0)
	assert.ErrorIs(t, err, types.ErrNonExistent)

	require.NoError(t, r.Load())
	_, err = r.GetRoute(false, src, sink2, 0, 0)
	assert.NoError(t, err)
}

func TestRouter_GetFirstNShortestPaths(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, false)
	r := b.router()

	_, err := r.GetFirstNShortestPaths(false, 0, 5, nil, nil)
	assert.ErrorIs(t, err, ErrNoGraph)

	require.NoError(t, r.Load())
	srcNode, ok := r.SourceNode(g.source1)
	require.True(t, ok)
	sinkNode, ok := r.SinkNode(g.sink1)
	require.True(t, ok)

	routes, err := r.GetFirstNShortestPaths(false, 1, 10, srcNode, sinkNode)
	require.NoError(t, err)
	assert.Len(t, routes, 5)

	// 源与宿位置颠倒
	_, err = r.GetFirstNShortestPaths(false, 1, 10, sinkNode, srcNode)
	assert.ErrorIs(t, err, types.ErrNonExistent)

	require.NoError(t, r.Load())
	_, err = r.GetFirstNShortestPaths(false, 1, 10, srcNode, sinkNode)
	assert.ErrorIs(t, err, ErrStaleNode)
	assert.ErrorIs(t, err, types.ErrNonExistent)
}

func TestRouter_Closed(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)
	sink := b.sink("sink", d, cfStereo)

	r := b.router()
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.GetRoute(false, src, sink, 0, 0)
	assert.ErrorIs(t, err, ErrRouterClosed)
	assert.ErrorIs(t, r.Load(), ErrRouterClosed)
}

// ============================================================================
//                              缓存与指标
// ============================================================================

func TestRouter_CacheAndMetrics(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, false)
	r := b.router(WithRegisterer(prometheus.NewRegistry()))

	first, err := r.GetRoute(false, g.source1, g.sink1, 1, 10)
	require.NoError(t, err)
	first[0].Elements[0].Format = types.FormatUnknown

	second, err := r.GetRoute(false, g.source1, g.sink1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, types.FormatStereo, second[0].Elements[0].Format, "cached routes are copies")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.cacheMisses))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.queries.WithLabelValues(resultOK)))
	assert.Equal(t, 1, r.cache.len())

	// onlyFree 不走缓存
	_, err = r.GetRoute(true, g.source1, g.sink1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.cacheHits))

	require.NoError(t, r.Load())
	assert.Equal(t, 0, r.cache.len())
	assert.Equal(t, float64(r.Graph().NodeCount()), testutil.ToFloat64(r.metrics.graphNodes))

	_, err = r.GetRoute(false, g.source1, 999, 0, 0)
	assert.ErrorIs(t, err, types.ErrNonExistent)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.queries.WithLabelValues(resultNonExistent)))
}

func TestRouter_CacheDisabled(t *testing.T) {
	b := newTopo(t)
	d := b.domain("domain1")
	src := b.source("source", d, cfStereo)
	sink := b.sink("sink", d, cfStereo)

	cfg := DefaultConfig()
	cfg.CacheSize = 0
	r, err := NewRouter(cfg, b.store, nil)
	require.NoError(t, err)
	assert.Nil(t, r.cache)

	_, err = r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
	_, err = r.GetRoute(false, src, sink, 0, 0)
	require.NoError(t, err)
}

func TestRouter_ConcurrentQueriesDuringReload(t *testing.T) {
	b := newTopo(t)
	g := buildGwCycles(b, false)
	r := b.router()
	require.NoError(t, r.Load())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				routes, err := r.GetRoute(false, g.source1, g.sink1, 1, 10)
				if assert.NoError(t, err) {
					assert.Len(t, routes, 5)
				}
			}
		}()
	}
	for j := 0; j < 10; j++ {
		require.NoError(t, r.Load())
	}
	wg.Wait()
}

func TestNewRouter_InvalidConfig(t *testing.T) {
	b := newTopo(t)
	cfg := DefaultConfig()
	cfg.MaxPaths = 0
	_, err := NewRouter(cfg, b.store, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRouter(DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

package audiomgr

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-audiomgr/config"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
	"github.com/dep2p/go-audiomgr/tests/mocks"
)

func quietConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	require.NoError(t, config.ApplyPreset(cfg, "test"))
	cfg.Log.Level = "error"
	return cfg
}

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithConfig(quietConfig(t))}, opts...)
	m, err := New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func importTestdata(t *testing.T, m *Manager) {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "topology.json"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, m.ImportTopology(f))
}

// TestManager_RouteAcrossGateway 验证导入拓扑后跨网关搜索
func TestManager_RouteAcrossGateway(t *testing.T) {
	m := newManager(t)
	importTestdata(t, m)

	routes, err := m.GetRoute(false, 1, 1)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "1->2[1]@ANALOG | 2->1[2]@MONO", routes[0].String())

	_, err = m.GetRoute(false, 1, 99)
	assert.ErrorIs(t, err, ErrNonExistent)

	// 路径数参数优先于配置
	routes, err = m.GetRouteWith(false, 1, 1, 0, 1)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

// TestManager_ConnectLifecycle 验证连接、确认与导出
func TestManager_ConnectLifecycle(t *testing.T) {
	plugin := mocks.NewMockPlugin()
	listener := mocks.NewMockAckListener()
	m := newManager(t, WithPlugin(1, plugin), WithAckListener(listener))
	importTestdata(t, m)

	h, connID, err := m.Connect(1, 2, types.FormatAnalog)
	require.NoError(t, err)
	assert.Equal(t, types.HandleConnect, h.Type)

	call, ok := plugin.LastCall(mocks.MethodConnect)
	require.True(t, ok)
	assert.Equal(t, connID, call.ConnectionID)

	handles := m.ListHandles()
	require.Len(t, handles, 1)
	assert.Equal(t, h, handles[0].Handle)

	// reserved 连接占用了音源，onlyFree 查询不到路由
	_, err = m.GetRoute(true, 1, 1)
	assert.ErrorIs(t, err, ErrNotPossible)

	m.AckReceiver().AckConnect(h, connID, types.CodeOK)
	ack, ok := listener.Last()
	require.True(t, ok)
	assert.Equal(t, types.CodeOK, ack.Code)
	assert.Empty(t, m.ListHandles())

	exported := m.ExportTopology()
	require.Len(t, exported.Connections, 1)
	assert.Equal(t, types.ConnectionFinal, exported.Connections[0].State)

	// 音宿 1 属于域 2，未登记插件
	_, _, err = m.Connect(2, 1, types.FormatMono)
	assert.ErrorIs(t, err, ErrNonExistent)
}

// TestManager_VolumeAndState 验证音量确认写回存储
func TestManager_VolumeAndState(t *testing.T) {
	plugin := mocks.NewMockPlugin()
	m := newManager(t, WithPlugin(2, plugin))
	importTestdata(t, m)

	h, err := m.SetSinkVolume(1, 20, types.RampDirect, 0)
	require.NoError(t, err)
	m.AckReceiver().AckSetSinkVolume(h, 20, types.CodeOK)

	sink, err := m.Store().GetSink(1)
	require.NoError(t, err)
	assert.Equal(t, types.Volume(20), sink.Volume)

	h, err = m.SetSourceState(2, types.SourceStateOn)
	require.NoError(t, err)
	require.NoError(t, m.Abort(h))
	assert.Equal(t, 1, plugin.CallCount(mocks.MethodAbort))
	m.AckReceiver().AckSetSourceState(h, types.CodeAborted)

	src, err := m.Store().GetSource(2)
	require.NoError(t, err)
	assert.NotEqual(t, types.SourceStateOn, src.State)
}

// TestManager_AddAckListenerAtRuntime 验证运行中追加监听器与插件
func TestManager_AddAckListenerAtRuntime(t *testing.T) {
	m := newManager(t)
	importTestdata(t, m)

	plugin := mocks.NewMockPlugin()
	require.NoError(t, m.RegisterPlugin(1, plugin))
	assert.ErrorIs(t, m.RegisterPlugin(1, plugin), types.ErrAlreadyExists)
	assert.ErrorIs(t, m.RegisterPlugin(3, nil), ErrNilPlugin)

	var got []types.Ack
	m.AddAckListener(pkgif.AckListenerFunc(func(a types.Ack) { got = append(got, a) }))

	h, err := m.SetSinkSoundProperties(2, []types.SoundProperty{{Type: 1, Value: 5}})
	require.NoError(t, err)
	m.AckReceiver().AckSetSinkSoundProperties(h, types.CodeOK)
	m.AckReceiver().AckSetSinkSoundProperties(h, types.CodeOK)

	require.Len(t, got, 2)
	assert.False(t, got[0].Stale)
	assert.True(t, got[1].Stale)
}

// TestManager_ImportTopologyErrors 验证导入错误
func TestManager_ImportTopologyErrors(t *testing.T) {
	m := newManager(t)

	assert.Error(t, m.ImportTopology(strings.NewReader(`{"unknown": 1}`)))

	err := m.ImportTopology(strings.NewReader(`{"sources": [{"id": 1, "domain_id": 7, "name": "x", "formats": [1]}]}`))
	assert.ErrorIs(t, err, ErrNonExistent)
}

// TestManager_ExportRoundTrip 验证导出的拓扑可以导入另一个 Manager
func TestManager_ExportRoundTrip(t *testing.T) {
	m1 := newManager(t)
	importTestdata(t, m1)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(m1.ExportTopology()))

	m2 := newManager(t)
	require.NoError(t, m2.ImportTopology(&buf))

	routes, err := m2.GetRoute(false, 1, 1)
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

// TestManager_Close 验证关闭后的行为
func TestManager_Close(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.GetRoute(false, 1, 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = m.Connect(1, 2, types.FormatAnalog)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.ReloadGraph(), ErrClosed)
	assert.ErrorIs(t, m.ImportTopology(strings.NewReader(`{}`)), ErrClosed)
}

// TestManager_Metrics 验证调用方注册器
func TestManager_Metrics(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Metrics.Enabled = true
	reg := prometheus.NewRegistry()

	m := newManager(t, WithConfig(cfg), WithRegisterer(reg))
	assert.Same(t, reg, m.Gatherer())
	assert.Empty(t, m.MetricsAddr())

	importTestdata(t, m)
	_, err := m.GetRoute(false, 1, 1)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "audiomgr_routing_queries_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

// ============================================================================
//                              选项
// ============================================================================

func TestOptions(t *testing.T) {
	_, err := New(context.Background(), WithPreset("nope"))
	assert.Error(t, err)

	_, err = New(context.Background(), WithPlugin(1, nil))
	assert.ErrorIs(t, err, ErrNilPlugin)

	_, err = New(context.Background(), WithConfig(nil))
	assert.Error(t, err)

	_, err = New(context.Background(), WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, err)

	// 同一个域登记两次
	_, err = New(context.Background(),
		WithConfig(quietConfig(t)),
		WithPlugin(1, mocks.NewMockPlugin()),
		WithPlugin(1, mocks.NewMockPlugin()),
	)
	assert.Error(t, err)
}

func TestWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audiomgr.json")
	doc := `{"routing": {"max_paths": 2, "max_cycles": -1}, "log": {"level": "error"}, "metrics": {"enabled": false}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	m, err := New(context.Background(), WithConfigFile(path), WithPreset("embedded"))
	require.NoError(t, err)
	defer m.Close()

	cfg := m.Config()
	assert.Equal(t, 3, cfg.Routing.MaxPaths, "预设在配置文件之后应用")
	assert.Equal(t, -1, cfg.Routing.MaxCycles)
	assert.Equal(t, "warn", cfg.Log.Level)

	// 返回的是副本
	cfg.Routing.MaxPaths = 100
	assert.Equal(t, 3, m.Config().Routing.MaxPaths)
}

func TestWithFormatChooser(t *testing.T) {
	doc := `{
	  "domains": [{"id": 1, "name": "d"}],
	  "sources": [{"id": 1, "domain_id": 1, "name": "s", "formats": [1, 2]}],
	  "sinks": [{"id": 1, "domain_id": 1, "name": "k", "formats": [1, 2]}]
	}`
	chooser := chooserFunc(func(_ types.SourceID, _ types.SinkID, c []types.ConnectionFormat) []types.ConnectionFormat {
		return []types.ConnectionFormat{types.FormatStereo}
	})
	m := newManager(t, WithFormatChooser(chooser))
	require.NoError(t, m.ImportTopology(strings.NewReader(doc)))

	routes, err := m.GetRoute(false, 1, 1)
	require.NoError(t, err)
	require.NotEmpty(t, routes)
	assert.Equal(t, types.FormatStereo, routes[0].Elements[0].Format)
}

type chooserFunc func(types.SourceID, types.SinkID, []types.ConnectionFormat) []types.ConnectionFormat

func (f chooserFunc) ConnectionFormatChoice(src types.SourceID, sink types.SinkID, c []types.ConnectionFormat) []types.ConnectionFormat {
	return f(src, sink, c)
}

func TestVersionInfo(t *testing.T) {
	assert.Equal(t, Version, VersionInfo())

	GitCommit, BuildDate = "abc123", "2026-10-01"
	defer func() { GitCommit, BuildDate = "", "" }()
	assert.Equal(t, Version+" (abc123) built 2026-10-01", VersionInfo())
}

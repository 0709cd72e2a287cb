package dispatcher

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-audiomgr/config"
	"github.com/dep2p/go-audiomgr/internal/core/entitystore"
	"github.com/dep2p/go-audiomgr/internal/core/eventbus"
	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
	"github.com/dep2p/go-audiomgr/tests/mocks"
)

func TestModule_WiresPluginsAndListeners(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Dispatch.HandlePoolSize = 8
	cfg.Dispatch.MaxInFlight = 4

	plugin1 := mocks.NewMockPlugin()
	plugin2 := mocks.NewMockPlugin()
	listener := mocks.NewMockAckListener()

	var (
		d     *Dispatcher
		recv  pkgif.AckReceiver
		store *entitystore.Store
	)
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(func() clock.Clock { return clock.NewMock() }),
		eventbus.Module(),
		entitystore.Module,
		Module,
		ProvidePlugin(1, plugin1),
		ProvidePlugin(2, plugin2),
		ProvideAckListener(listener),
		fx.Populate(&d, &recv, &store),
	)
	app.RequireStart()

	require.NotNil(t, d)
	assert.Same(t, d, recv)
	assert.Equal(t, []types.DomainID{1, 2}, d.Plugins().Domains())
	assert.Equal(t, 8, d.handles.Size())
	assert.Equal(t, 4, d.admit.limit)

	dom, err := store.EnterDomain(types.Domain{ID: 2, Name: "domain2"})
	require.NoError(t, err)
	src, err := store.EnterSource(types.Source{Name: "source", DomainID: dom, Formats: []types.ConnectionFormat{types.FormatMono}})
	require.NoError(t, err)

	h, err := d.SetSourceState(src, types.SourceStateOn)
	require.NoError(t, err)
	assert.Equal(t, 1, plugin2.CallCount(mocks.MethodSetSourceState))
	assert.Equal(t, 0, plugin1.CallCount(mocks.MethodSetSourceState))

	recv.AckSetSourceState(h, types.CodeOK)
	require.Len(t, listener.Acks(), 1)

	app.RequireStop()
	_, err = d.SetSourceState(src, types.SourceStateOff)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestModule_DuplicatePluginFails(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		eventbus.Module(),
		entitystore.Module,
		Module,
		ProvidePlugin(1, mocks.NewMockPlugin()),
		ProvidePlugin(1, mocks.NewMockPlugin()),
		fx.Invoke(func(*Dispatcher) {}),
	)
	err := app.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Dispatch.HandlePoolSize = 16
	cfg.Dispatch.MaxInFlight = 2
	cfg.Dispatch.LegacyZeroHandle = true

	got := ConfigFromUnified(cfg)
	assert.Equal(t, &Config{HandlePoolSize: 16, MaxInFlight: 2, LegacyZeroHandle: true}, got)
	assert.NoError(t, got.Validate())
}

// ============================================================================
//                              插件表
// ============================================================================

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	p := mocks.NewMockPlugin()

	require.NoError(t, r.Register(3, p))
	require.NoError(t, r.Register(1, p))
	assert.ErrorIs(t, r.Register(3, p), types.ErrAlreadyExists)
	assert.ErrorIs(t, r.Register(4, nil), ErrNilPlugin)
	assert.Equal(t, []types.DomainID{1, 3}, r.Domains())

	got, err := r.Lookup(3)
	require.NoError(t, err)
	assert.Same(t, p, got)

	require.NoError(t, r.Unregister(3))
	assert.ErrorIs(t, r.Unregister(3), types.ErrNonExistent)
	_, err = r.Lookup(3)
	assert.ErrorIs(t, err, types.ErrNonExistent)
}

func TestDispatcher_WithRegistry(t *testing.T) {
	store, err := entitystore.New(nil)
	require.NoError(t, err)

	r := NewRegistry()
	d, err := New(nil, store, WithRegistry(r))
	require.NoError(t, err)
	assert.Same(t, r, d.Plugins())
}

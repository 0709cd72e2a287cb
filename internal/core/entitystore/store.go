package entitystore

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/lib/log"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

var logger = log.Logger("core/entitystore")

var _ pkgif.EntityStore = (*Store)(nil)

// ============================================================================
//                              Store 实现
// ============================================================================

// Store 内存实体存储
type Store struct {
	mu sync.RWMutex

	domains     *table[types.DomainID, types.Domain]
	sources     *table[types.SourceID, types.Source]
	sinks       *table[types.SinkID, types.Sink]
	gateways    *table[types.GatewayID, types.Gateway]
	converters  *table[types.ConverterID, types.Converter]
	connections *table[types.ConnectionID, types.Connection]

	topoEmitter pkgif.Emitter
	connEmitter pkgif.Emitter
	closed      bool
}

// New 创建实体存储
//
// bus 为 nil 时不发出变更事件。
func New(bus pkgif.EventBus) (*Store, error) {
	s := &Store{
		domains:     newTable[types.DomainID, types.Domain](types.EntityDomain, types.DynamicIDBoundary),
		sources:     newTable[types.SourceID, types.Source](types.EntitySource, types.DynamicIDBoundary),
		sinks:       newTable[types.SinkID, types.Sink](types.EntitySink, types.DynamicIDBoundary),
		gateways:    newTable[types.GatewayID, types.Gateway](types.EntityGateway, types.DynamicIDBoundary),
		converters:  newTable[types.ConverterID, types.Converter](types.EntityConverter, types.DynamicIDBoundary),
		connections: newTable[types.ConnectionID, types.Connection](types.EntityConnection, 1),
	}

	if bus != nil {
		topo, err := bus.Emitter(new(types.EvtTopologyChanged))
		if err != nil {
			return nil, fmt.Errorf("entitystore: topology emitter: %w", err)
		}
		conn, err := bus.Emitter(new(types.EvtConnectionChanged))
		if err != nil {
			_ = topo.Close()
			return nil, fmt.Errorf("entitystore: connection emitter: %w", err)
		}
		s.topoEmitter = topo
		s.connEmitter = conn
	}
	return s, nil
}

// Close 关闭事件发射器
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.topoEmitter != nil {
		err = multierr.Append(err, s.topoEmitter.Close())
	}
	if s.connEmitter != nil {
		err = multierr.Append(err, s.connEmitter.Close())
	}
	return err
}

// ============================================================================
//                              事件
// ============================================================================

func (s *Store) emitTopology(kind types.EntityKind, id uint16, op types.ChangeOp) {
	if s.topoEmitter == nil || s.closed {
		return
	}
	evt := types.EvtTopologyChanged{Kind: kind, ID: id, Op: op, Time: time.Now()}
	if err := s.topoEmitter.Emit(evt); err != nil {
		logger.Warn("发送拓扑事件失败", "kind", kind.String(), "id", id, "err", err)
	}
}

func (s *Store) emitConnection(id types.ConnectionID, state types.ConnectionState, op types.ChangeOp) {
	if s.connEmitter == nil || s.closed {
		return
	}
	evt := types.EvtConnectionChanged{ConnectionID: id, State: state, Op: op, Time: time.Now()}
	if err := s.connEmitter.Emit(evt); err != nil {
		logger.Warn("发送连接事件失败", "connectionID", id, "err", err)
	}
}

// ============================================================================
//                              域
// ============================================================================

// EnterDomain 注册域
func (s *Store) EnterDomain(d types.Domain) (types.DomainID, error) {
	if d.Name == "" {
		return 0, fmt.Errorf("%w: domain name is empty", ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.domains.reserve(d.ID)
	if err != nil {
		return 0, err
	}
	d.ID = id
	s.domains.rows[id] = d

	logger.Debug("注册域", "domainID", id, "name", d.Name)
	s.emitTopology(types.EntityDomain, uint16(id), types.OpInsert)
	return id, nil
}

// GetDomain 查询域
func (s *Store) GetDomain(id types.DomainID) (types.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.get(id)
}

// ListDomains 列出所有域
func (s *Store) ListDomains() []types.Domain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.list(identity[types.Domain])
}

// RemoveDomain 移除域
//
// 仍有音源、音宿或转换器属于该域时返回 ErrNotPossible。
func (s *Store) RemoveDomain(id types.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.domains.has(id) {
		return fmt.Errorf("%w: domain %d", types.ErrNonExistent, id)
	}
	if s.domainInUse(id) {
		return fmt.Errorf("%w: domain %d still has members", types.ErrNotPossible, id)
	}
	_ = s.domains.remove(id)
	s.emitTopology(types.EntityDomain, uint16(id), types.OpRemove)
	return nil
}

func (s *Store) domainInUse(id types.DomainID) bool {
	for _, src := range s.sources.rows {
		if src.DomainID == id {
			return true
		}
	}
	for _, snk := range s.sinks.rows {
		if snk.DomainID == id {
			return true
		}
	}
	for _, c := range s.converters.rows {
		if c.DomainID == id {
			return true
		}
	}
	return false
}

// ============================================================================
//                              音源 / 音宿
// ============================================================================

// EnterSource 注册音源
func (s *Store) EnterSource(src types.Source) (types.SourceID, error) {
	if len(src.Formats) == 0 {
		return 0, fmt.Errorf("%w: source %q has no connection formats", ErrInvalidRecord, src.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.domains.has(src.DomainID) {
		return 0, fmt.Errorf("%w: domain %d", types.ErrNonExistent, src.DomainID)
	}
	id, err := s.sources.reserve(src.ID)
	if err != nil {
		return 0, err
	}
	src = src.Clone()
	src.ID = id
	s.sources.rows[id] = src

	logger.Debug("注册音源", "sourceID", id, "domainID", src.DomainID)
	s.emitTopology(types.EntitySource, uint16(id), types.OpInsert)
	return id, nil
}

// EnterSink 注册音宿
func (s *Store) EnterSink(snk types.Sink) (types.SinkID, error) {
	if len(snk.Formats) == 0 {
		return 0, fmt.Errorf("%w: sink %q has no connection formats", ErrInvalidRecord, snk.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.domains.has(snk.DomainID) {
		return 0, fmt.Errorf("%w: domain %d", types.ErrNonExistent, snk.DomainID)
	}
	id, err := s.sinks.reserve(snk.ID)
	if err != nil {
		return 0, err
	}
	snk = snk.Clone()
	snk.ID = id
	s.sinks.rows[id] = snk

	logger.Debug("注册音宿", "sinkID", id, "domainID", snk.DomainID)
	s.emitTopology(types.EntitySink, uint16(id), types.OpInsert)
	return id, nil
}

// GetSource 查询音源
func (s *Store) GetSource(id types.SourceID) (types.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, err := s.sources.get(id)
	if err != nil {
		return types.Source{}, err
	}
	return src.Clone(), nil
}

// GetSink 查询音宿
func (s *Store) GetSink(id types.SinkID) (types.Sink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snk, err := s.sinks.get(id)
	if err != nil {
		return types.Sink{}, err
	}
	return snk.Clone(), nil
}

// ListSources 列出所有音源
func (s *Store) ListSources() []types.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources.list(types.Source.Clone)
}

// ListSinks 列出所有音宿
func (s *Store) ListSinks() []types.Sink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sinks.list(types.Sink.Clone)
}

// RemoveSource 移除音源
func (s *Store) RemoveSource(id types.SourceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sources.remove(id); err != nil {
		return err
	}
	s.emitTopology(types.EntitySource, uint16(id), types.OpRemove)
	return nil
}

// RemoveSink 移除音宿
func (s *Store) RemoveSink(id types.SinkID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sinks.remove(id); err != nil {
		return err
	}
	s.emitTopology(types.EntitySink, uint16(id), types.OpRemove)
	return nil
}

// ============================================================================
//                              网关 / 转换器
// ============================================================================

// checkConversion 校验转换矩阵与两端
func (s *Store) checkConversion(c types.Conversion) error {
	if !c.MatrixValid() {
		return fmt.Errorf("%w: %d entries for %d source x %d sink formats",
			types.ErrInvalidMatrix, len(c.Matrix), len(c.SourceFormats), len(c.SinkFormats))
	}
	if !s.sinks.has(c.SinkID) {
		return fmt.Errorf("%w: sink %d", types.ErrNonExistent, c.SinkID)
	}
	if !s.sources.has(c.SourceID) {
		return fmt.Errorf("%w: source %d", types.ErrNonExistent, c.SourceID)
	}
	return nil
}

// EnterGateway 注册网关
func (s *Store) EnterGateway(g types.Gateway) (types.GatewayID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConversion(g.Conversion); err != nil {
		return 0, err
	}
	id, err := s.gateways.reserve(g.ID)
	if err != nil {
		return 0, err
	}
	g = g.Clone()
	g.ID = id
	s.gateways.rows[id] = g

	logger.Debug("注册网关", "gatewayID", id, "sinkID", g.SinkID, "sourceID", g.SourceID)
	s.emitTopology(types.EntityGateway, uint16(id), types.OpInsert)
	return id, nil
}

// EnterConverter 注册转换器
func (s *Store) EnterConverter(c types.Converter) (types.ConverterID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.domains.has(c.DomainID) {
		return 0, fmt.Errorf("%w: domain %d", types.ErrNonExistent, c.DomainID)
	}
	if err := s.checkConversion(c.Conversion); err != nil {
		return 0, err
	}
	id, err := s.converters.reserve(c.ID)
	if err != nil {
		return 0, err
	}
	c = c.Clone()
	c.ID = id
	s.converters.rows[id] = c

	logger.Debug("注册转换器", "converterID", id, "domainID", c.DomainID)
	s.emitTopology(types.EntityConverter, uint16(id), types.OpInsert)
	return id, nil
}

// ListGateways 列出所有网关
func (s *Store) ListGateways() []types.Gateway {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateways.list(types.Gateway.Clone)
}

// ListConverters 列出所有转换器
func (s *Store) ListConverters() []types.Converter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.converters.list(types.Converter.Clone)
}

// RemoveGateway 移除网关
func (s *Store) RemoveGateway(id types.GatewayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gateways.remove(id); err != nil {
		return err
	}
	s.emitTopology(types.EntityGateway, uint16(id), types.OpRemove)
	return nil
}

// RemoveConverter 移除转换器
func (s *Store) RemoveConverter(id types.ConverterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.converters.remove(id); err != nil {
		return err
	}
	s.emitTopology(types.EntityConverter, uint16(id), types.OpRemove)
	return nil
}

// ============================================================================
//                              属性写入
// ============================================================================

// ChangeSinkVolume 写入音宿音量
func (s *Store) ChangeSinkVolume(id types.SinkID, v types.Volume) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snk, err := s.sinks.get(id)
	if err != nil {
		return err
	}
	snk.Volume = v
	s.sinks.rows[id] = snk
	return nil
}

// ChangeSourceVolume 写入音源音量
func (s *Store) ChangeSourceVolume(id types.SourceID, v types.Volume) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.sources.get(id)
	if err != nil {
		return err
	}
	src.Volume = v
	s.sources.rows[id] = src
	return nil
}

// ChangeSourceState 写入音源状态
func (s *Store) ChangeSourceState(id types.SourceID, state types.SourceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.sources.get(id)
	if err != nil {
		return err
	}
	src.State = state
	s.sources.rows[id] = src
	return nil
}

// ChangeSinkSoundProperties 合并写入音宿声音属性（按类型覆盖）
func (s *Store) ChangeSinkSoundProperties(id types.SinkID, props []types.SoundProperty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snk, err := s.sinks.get(id)
	if err != nil {
		return err
	}
	snk.SoundProperties = mergeProperties(snk.SoundProperties, props)
	s.sinks.rows[id] = snk
	return nil
}

// ChangeSourceSoundProperties 合并写入音源声音属性（按类型覆盖）
func (s *Store) ChangeSourceSoundProperties(id types.SourceID, props []types.SoundProperty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.sources.get(id)
	if err != nil {
		return err
	}
	src.SoundProperties = mergeProperties(src.SoundProperties, props)
	s.sources.rows[id] = src
	return nil
}

func mergeProperties(cur, updates []types.SoundProperty) []types.SoundProperty {
	out := slices.Clone(cur)
	for _, u := range updates {
		i := slices.IndexFunc(out, func(p types.SoundProperty) bool { return p.Type == u.Type })
		if i >= 0 {
			out[i] = u
		} else {
			out = append(out, u)
		}
	}
	return out
}

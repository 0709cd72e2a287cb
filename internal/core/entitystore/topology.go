package entitystore

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              拓扑快照导入/导出
// ============================================================================

// Topology 拓扑描述，用于从文件批量注册实体
type Topology struct {
	Domains     []types.Domain     `json:"domains"`
	Sources     []types.Source     `json:"sources"`
	Sinks       []types.Sink       `json:"sinks"`
	Gateways    []types.Gateway    `json:"gateways"`
	Converters  []types.Converter  `json:"converters"`
	Connections []types.Connection `json:"connections,omitempty"`
}

// DecodeTopology 解析 JSON 拓扑
func DecodeTopology(r io.Reader) (*Topology, error) {
	var t Topology
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("entitystore: decode topology: %w", err)
	}
	return &t, nil
}

// Import 按依赖顺序注册拓扑中的全部实体
//
// 单条记录失败不会中断导入，所有错误合并返回。文件中的连接被直接
// 写为 final。
func (s *Store) Import(t *Topology) error {
	var errs error
	for _, d := range t.Domains {
		if _, err := s.EnterDomain(d); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("domain %q: %w", d.Name, err))
		}
	}
	for _, src := range t.Sources {
		if _, err := s.EnterSource(src); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("source %q: %w", src.Name, err))
		}
	}
	for _, snk := range t.Sinks {
		if _, err := s.EnterSink(snk); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sink %q: %w", snk.Name, err))
		}
	}
	for _, g := range t.Gateways {
		if _, err := s.EnterGateway(g); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("gateway %q: %w", g.Name, err))
		}
	}
	for _, c := range t.Converters {
		if _, err := s.EnterConverter(c); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("converter %q: %w", c.Name, err))
		}
	}
	for _, c := range t.Connections {
		id, err := s.EnterConnection(c)
		if err == nil {
			err = s.ChangeConnectionFinal(id)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("connection %d->%d: %w", c.SourceID, c.SinkID, err))
		}
	}
	return errs
}

// Export 导出当前拓扑（连接只包含 final）
func (s *Store) Export() *Topology {
	return &Topology{
		Domains:     s.ListDomains(),
		Sources:     s.ListSources(),
		Sinks:       s.ListSinks(),
		Gateways:    s.ListGateways(),
		Converters:  s.ListConverters(),
		Connections: s.ListConnections(),
	}
}

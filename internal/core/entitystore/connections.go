package entitystore

import (
	"fmt"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// ============================================================================
//                              连接
// ============================================================================

// EnterConnection 写入 reserved 连接
func (s *Store) EnterConnection(c types.Connection) (types.ConnectionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sources.has(c.SourceID) {
		return 0, fmt.Errorf("%w: source %d", types.ErrNonExistent, c.SourceID)
	}
	if !s.sinks.has(c.SinkID) {
		return 0, fmt.Errorf("%w: sink %d", types.ErrNonExistent, c.SinkID)
	}
	id, err := s.connections.reserve(c.ID)
	if err != nil {
		return 0, err
	}
	c.ID = id
	c.State = types.ConnectionReserved
	s.connections.rows[id] = c

	s.emitConnection(id, c.State, types.OpInsert)
	return id, nil
}

// ChangeConnectionFinal 提升为 final，已是 final 时幂等
func (s *Store) ChangeConnectionFinal(id types.ConnectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.connections.get(id)
	if err != nil {
		return err
	}
	if c.State == types.ConnectionFinal {
		return nil
	}
	c.State = types.ConnectionFinal
	s.connections.rows[id] = c

	s.emitConnection(id, c.State, types.OpUpdate)
	return nil
}

// RemoveConnection 移除连接
func (s *Store) RemoveConnection(id types.ConnectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.connections.get(id)
	if err != nil {
		return err
	}
	_ = s.connections.remove(id)

	s.emitConnection(id, c.State, types.OpRemove)
	return nil
}

// GetConnection 查询连接
func (s *Store) GetConnection(id types.ConnectionID) (types.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connections.get(id)
}

// ListConnections 列出 final 连接
func (s *Store) ListConnections() []types.Connection {
	return s.listConnections(types.ConnectionFinal)
}

// ListConnectionsReserved 列出 reserved 连接
func (s *Store) ListConnectionsReserved() []types.Connection {
	return s.listConnections(types.ConnectionReserved)
}

func (s *Store) listConnections(state types.ConnectionState) []types.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.connections.list(identity[types.Connection])
	out := all[:0]
	for _, c := range all {
		if c.State == state {
			out = append(out, c)
		}
	}
	return out
}

package dispatcher

import (
	"fmt"
	"slices"
	"sync"

	pkgif "github.com/dep2p/go-audiomgr/pkg/interfaces"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

// Registry 按域登记的插件表
type Registry struct {
	mu      sync.RWMutex
	plugins map[types.DomainID]pkgif.RoutingPlugin
}

// NewRegistry 创建插件表
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[types.DomainID]pkgif.RoutingPlugin)}
}

// Register 为域登记插件，已存在时返回 types.ErrAlreadyExists
func (r *Registry) Register(domainID types.DomainID, p pkgif.RoutingPlugin) error {
	if p == nil {
		return ErrNilPlugin
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[domainID]; ok {
		return fmt.Errorf("%w: plugin for domain %d", types.ErrAlreadyExists, domainID)
	}
	r.plugins[domainID] = p
	logger.Info("登记域插件", "domainID", domainID)
	return nil
}

// Unregister 移除域插件
func (r *Registry) Unregister(domainID types.DomainID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[domainID]; !ok {
		return fmt.Errorf("%w: plugin for domain %d", types.ErrNonExistent, domainID)
	}
	delete(r.plugins, domainID)
	logger.Info("移除域插件", "domainID", domainID)
	return nil
}

// Lookup 查找域插件
func (r *Registry) Lookup(domainID types.DomainID) (pkgif.RoutingPlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[domainID]
	if !ok {
		return nil, fmt.Errorf("%w: no plugin for domain %d", types.ErrNonExistent, domainID)
	}
	return p, nil
}

// Domains 按 ID 升序返回已登记插件的域
func (r *Registry) Domains() []types.DomainID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.DomainID, 0, len(r.plugins))
	for d := range r.plugins {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

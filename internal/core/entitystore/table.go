package entitystore

import (
	"fmt"
	"math"
	"slices"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// table 以 uint16 类 ID 为键的记录表
type table[K ~uint16, V any] struct {
	kind  types.EntityKind
	first K
	next  K
	rows  map[K]V
}

func newTable[K ~uint16, V any](kind types.EntityKind, first K) *table[K, V] {
	return &table[K, V]{
		kind:  kind,
		first: first,
		next:  first,
		rows:  make(map[K]V),
	}
}

// reserve 返回可用 ID：id 非 0 时校验未被占用，否则分配动态 ID
func (t *table[K, V]) reserve(id K) (K, error) {
	if id != 0 {
		if _, ok := t.rows[id]; ok {
			return 0, fmt.Errorf("%w: %s %d", types.ErrAlreadyExists, t.kind, id)
		}
		return id, nil
	}

	span := math.MaxUint16 - int(t.first) + 1
	for i := 0; i < span; i++ {
		cand := t.next
		if t.next == math.MaxUint16 {
			t.next = t.first
		} else {
			t.next++
		}
		if _, used := t.rows[cand]; !used {
			return cand, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrIDSpaceExhausted, t.kind)
}

func (t *table[K, V]) get(id K) (V, error) {
	v, ok := t.rows[id]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %s %d", types.ErrNonExistent, t.kind, id)
	}
	return v, nil
}

func (t *table[K, V]) has(id K) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[K, V]) remove(id K) error {
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%w: %s %d", types.ErrNonExistent, t.kind, id)
	}
	delete(t.rows, id)
	return nil
}

// list 按 ID 升序返回记录，clone 用于深拷贝
func (t *table[K, V]) list(clone func(V) V) []V {
	keys := make([]K, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(t.rows[k]))
	}
	return out
}

func identity[V any](v V) V { return v }

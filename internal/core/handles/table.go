package handles

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-audiomgr/pkg/lib/log"
	"github.com/dep2p/go-audiomgr/pkg/types"
)

var logger = log.Logger("core/handles")

// MaxSize 句柄池上限
const MaxSize = 1023

// ============================================================================
//                              状态
// ============================================================================

// State 句柄状态
type State uint8

const (
	// StateIssued 已下发，等待确认
	StateIssued State = iota + 1
	// StateAbortRequested 已请求取消，等待确认
	StateAbortRequested
	// StateTerminal 已终结
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIssued:
		return "issued"
	case StateAbortRequested:
		return "abort_requested"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Entry 活跃句柄记录
type Entry struct {
	Handle types.Handle
	State  State

	// DomainID 接收原操作的插件所属域，取消请求发往同一插件
	DomainID types.DomainID

	// Payload 确认时需要写回的请求数据
	Payload any

	IssuedAt      time.Time
	CorrelationID uuid.UUID
}

// ============================================================================
//                              Table
// ============================================================================

type slot struct {
	gen   uint32
	entry *Entry
}

// Table 句柄表
type Table struct {
	mu     sync.Mutex
	slots  []slot // 下标即 ID，0 不用
	cursor uint16 // 上次分配的 ID
	active int
	clock  clock.Clock
}

// NewTable 创建句柄表，clk 为 nil 时使用系统时钟
func NewTable(size int, clk clock.Clock) (*Table, error) {
	if size <= 0 || size > MaxSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Table{
		slots: make([]slot, size+1),
		clock: clk,
	}, nil
}

// Size 池大小
func (t *Table) Size() int {
	return len(t.slots) - 1
}

// Len 活跃句柄数
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Allocate 分配句柄
//
// 池满时返回 types.ErrResourceExhausted，不改变任何状态。
func (t *Table) Allocate(typ types.HandleType, domainID types.DomainID, payload any) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := uint16(t.Size())
	if t.active >= int(size) {
		return Entry{}, fmt.Errorf("%w: %d handles active", types.ErrResourceExhausted, t.active)
	}

	id := t.cursor
	for {
		id++
		if id > size {
			id = 1
		}
		if t.slots[id].entry == nil {
			break
		}
	}

	s := &t.slots[id]
	s.gen++
	s.entry = &Entry{
		Handle:        types.Handle{ID: id, Type: typ, Gen: s.gen},
		State:         StateIssued,
		DomainID:      domainID,
		Payload:       payload,
		IssuedAt:      t.clock.Now(),
		CorrelationID: uuid.New(),
	}
	t.cursor = id
	t.active++

	logger.Debug("分配句柄", "handle", s.entry.Handle, "active", t.active)
	return *s.entry, nil
}

// lookup 调用方持锁
func (t *Table) lookup(h types.Handle) *Entry {
	if h.ID == 0 || int(h.ID) >= len(t.slots) {
		return nil
	}
	s := &t.slots[h.ID]
	if s.entry == nil || s.gen != h.Gen || s.entry.Handle.Type != h.Type {
		return nil
	}
	return s.entry
}

// Lookup 查询活跃句柄
func (t *Table) Lookup(h types.Handle) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// RequestAbort 标记取消请求
//
// 句柄不活跃时返回 types.ErrNonExistent。first 仅在首次请求时为 true，
// 调用方据此只向插件转发一次。句柄保持活跃，直到确认到达。
func (t *Table) RequestAbort(h types.Handle) (entry Entry, first bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return Entry{}, false, fmt.Errorf("%w: handle %s", types.ErrNonExistent, h)
	}
	if e.State == StateIssued {
		e.State = StateAbortRequested
		return *e, true, nil
	}
	return *e, false, nil
}

// CancelAbort 撤销未能转发的取消请求，句柄回到 StateIssued
//
// 句柄不活跃或未处于 StateAbortRequested 时不做任何事。
func (t *Table) CancelAbort(h types.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e := t.lookup(h); e != nil && e.State == StateAbortRequested {
		e.State = StateIssued
	}
}

// Complete 终结句柄并移出活跃集合
//
// 返回终结前的记录；句柄已终结或不匹配时 first=false。
func (t *Table) Complete(h types.Handle) (entry Entry, first bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return Entry{}, false
	}
	prev := *e
	e.State = StateTerminal
	t.slots[h.ID].entry = nil
	t.active--

	logger.Debug("句柄终结", "handle", h, "active", t.active)
	return prev, true
}

// List 按 ID 升序返回活跃句柄
func (t *Table) List() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, t.active)
	for id := 1; id < len(t.slots); id++ {
		if e := t.slots[id].entry; e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// Age 返回句柄自下发以来的时长
func (t *Table) Age(e Entry) time.Duration {
	return t.clock.Since(e.IssuedAt)
}

package audiomgr

import (
	"errors"

	"github.com/dep2p/go-audiomgr/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClosed Manager 已关闭
	ErrClosed = errors.New("manager closed")

	// ErrNilPlugin 插件为 nil
	ErrNilPlugin = errors.New("nil plugin")

	// ────────────────────────────────────────────────────────────────────────
	// 操作结果错误（与 types.ErrorCode 一一对应）
	// ────────────────────────────────────────────────────────────────────────

	// ErrNonExistent 实体不存在
	ErrNonExistent = types.ErrNonExistent

	// ErrNotPossible 操作不可行
	ErrNotPossible = types.ErrNotPossible

	// ErrAborted 操作已中止
	ErrAborted = types.ErrAborted

	// ErrUnknown 未分类错误
	ErrUnknown = types.ErrUnknown

	// ErrResourceExhausted 句柄池耗尽或在途操作达到上限
	ErrResourceExhausted = types.ErrResourceExhausted
)

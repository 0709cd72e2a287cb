package types

import "errors"

// ============================================================================
//                              错误分类
// ============================================================================

var (
	// ErrNonExistent 引用了未知的 ID
	ErrNonExistent = errors.New("non existent")

	// ErrNotPossible 搜索穷尽或触及资源上限
	ErrNotPossible = errors.New("not possible")

	// ErrAborted 操作在完成前被取消
	ErrAborted = errors.New("aborted")

	// ErrUnknown 插件侧的不透明失败
	ErrUnknown = errors.New("unknown")

	// ErrResourceExhausted 句柄池耗尽
	ErrResourceExhausted = errors.New("handle pool exhausted")

	// ErrAlreadyExists ID 已被占用
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidMatrix 转换矩阵尺寸与格式列表不符
	ErrInvalidMatrix = errors.New("conversion matrix size mismatch")
)

// ============================================================================
//                              ErrorCode - 确认码
// ============================================================================

// ErrorCode 插件确认中携带的结果码
type ErrorCode int

const (
	// CodeOK 成功
	CodeOK ErrorCode = iota
	// CodeNonExistent 未知 ID
	CodeNonExistent
	// CodeNotPossible 不可行
	CodeNotPossible
	// CodeAborted 已取消
	CodeAborted
	// CodeUnknown 未知失败
	CodeUnknown
)

// String 返回结果码的字符串表示
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeNonExistent:
		return "NON_EXISTENT"
	case CodeNotPossible:
		return "NOT_POSSIBLE"
	case CodeAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Err 返回结果码对应的哨兵错误，CodeOK 返回 nil
func (c ErrorCode) Err() error {
	switch c {
	case CodeOK:
		return nil
	case CodeNonExistent:
		return ErrNonExistent
	case CodeNotPossible:
		return ErrNotPossible
	case CodeAborted:
		return ErrAborted
	default:
		return ErrUnknown
	}
}

// CodeOf 将错误归类为结果码
//
// 句柄池耗尽归为 NOT_POSSIBLE；无法识别的错误归为 UNKNOWN。
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNonExistent):
		return CodeNonExistent
	case errors.Is(err, ErrNotPossible), errors.Is(err, ErrResourceExhausted):
		return CodeNotPossible
	case errors.Is(err, ErrAborted):
		return CodeAborted
	default:
		return CodeUnknown
	}
}

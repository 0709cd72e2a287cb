package entitystore

import "errors"

var (
	// ErrClosed 存储已关闭
	ErrClosed = errors.New("entitystore: closed")

	// ErrIDSpaceExhausted 动态 ID 空间耗尽
	ErrIDSpaceExhausted = errors.New("entitystore: id space exhausted")

	// ErrInvalidRecord 记录字段无效
	ErrInvalidRecord = errors.New("entitystore: invalid record")
)

package dispatcher

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("dispatcher: invalid config")

	// ErrClosed 分发器已关闭
	ErrClosed = errors.New("dispatcher: closed")

	// ErrNilPlugin 注册了 nil 插件
	ErrNilPlugin = errors.New("dispatcher: nil plugin")
)

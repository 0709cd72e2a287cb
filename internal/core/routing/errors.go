package routing

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("routing: invalid config")

	// ErrRouterClosed 路由器已关闭
	ErrRouterClosed = errors.New("routing: router closed")

	// ErrNoGraph 尚未加载图
	ErrNoGraph = errors.New("routing: graph not loaded")

	// ErrStaleNode 节点不属于当前图
	ErrStaleNode = errors.New("routing: node does not belong to current graph")
)

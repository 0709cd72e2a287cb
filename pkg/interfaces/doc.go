// Package interfaces 定义音频路由核心的公共接口
//
// 一个接口文件对应一个实现目录或一个外部协作方：
//   - store.go     - 实体存储（internal/core/entitystore）
//   - eventbus.go  - 事件总线（internal/core/eventbus）
//   - plugin.go    - 域插件与确认回调（internal/core/dispatcher）
//   - policy.go    - 连接格式选择策略（internal/core/routing）
//
// 接口只依赖 pkg/types，实现包之间通过这些接口解耦。
package interfaces

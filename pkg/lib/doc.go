// Package lib 包含与架构组件无关的基础设施工具库
//
//   - log: 基于 slog 的组件日志封装
//
// pkg/ 目录包含三类内容：
//
//   - interfaces/: 组件公共接口
//   - types/: 公共类型定义
//   - lib/: 基础设施工具库（本目录）
package lib

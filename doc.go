// Package audiomgr 车载音频路由代理
//
// audiomgr 维护音频拓扑（域、音源、音宿、网关、转换器），在拓扑上搜索
// 从音源到音宿的候选路由，并把连接、音量、状态、声音属性等操作分发给
// 负责各个域的插件。插件异步执行操作，结果通过句柄回送。
//
// # 快速开始
//
//	mgr, err := audiomgr.New(ctx,
//	    audiomgr.WithPreset("embedded"),
//	    audiomgr.WithPlugin(1, myPlugin),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	// 注册拓扑
//	if err := mgr.ImportTopology(f); err != nil {
//	    log.Fatal(err)
//	}
//
//	// 搜索路由
//	routes, err := mgr.GetRoute(false, sourceID, sinkID)
//
//	// 建立连接，结果经 AckListener 回送
//	h, connID, err := mgr.Connect(sourceID, sinkID, types.FormatStereo)
//
// # 句柄与确认
//
// 每个异步操作返回一个句柄。插件在自己的执行上下文中调用
// Manager.AckReceiver() 的对应方法回送结果；同一句柄只有第一次确认
// 生效，其后的确认以 Stale 标记转发给监听器。
//
// # 架构
//
// Manager 只是 internal/app 组装的 fx 运行时之上的一层薄封装：
//
//	entitystore  实体存储，变更经事件总线通知路由器
//	routing      路由图构建与最短路径搜索
//	dispatcher   句柄分配、插件分发与确认处理
package audiomgr

// Package handles 管理异步操作句柄
//
// 句柄 ID 取自有界池 1..N（N 最大 1023），0 保留为"无句柄"。
// 分配从滚动游标向前扫描，跳过仍活跃的 ID；已终结的 ID 立即可复用，
// 不必等游标绕回一圈。
//
// 每个槽位带一个代数计数，每次分配递增。确认必须携带完整的
// (ID, Type, Gen) 才能命中，迟到的确认不会误伤复用同一 ID 的新操作。
//
// 状态机：
//
//	Issued --RequestAbort--> AbortRequested
//	Issued / AbortRequested --Complete--> Terminal（移出活跃集合）
//
// Complete 幂等：同一句柄只有第一次调用返回 first=true。
package handles

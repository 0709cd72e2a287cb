package routing

import "github.com/dep2p/go-audiomgr/pkg/types"

// ShouldGoInDomain 判断路径能否进入 candidate 域
//
// visited 为当前路径已经过的域（按顺序）。留在当前所在域总是允许；
// 重新进入曾离开的域时，candidate 在 visited 中出现次数不得超过 maxCycles。
// maxCycles 为负数表示不限制。
func ShouldGoInDomain(visited []types.DomainID, candidate types.DomainID, maxCycles int) bool {
	if maxCycles < 0 {
		return true
	}
	if len(visited) > 0 && visited[len(visited)-1] == candidate {
		return true
	}
	count := 0
	for _, d := range visited {
		if d == candidate {
			count++
		}
	}
	return count <= maxCycles
}

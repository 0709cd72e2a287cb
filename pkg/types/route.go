package types

import (
	"fmt"
	"slices"
	"strings"
)

// ============================================================================
//                              路由
// ============================================================================

// RoutingElement 路由中的一跳
type RoutingElement struct {
	SourceID SourceID         `json:"source_id"`
	SinkID   SinkID           `json:"sink_id"`
	DomainID DomainID         `json:"domain_id"`
	Format   ConnectionFormat `json:"format"`
}

// Route 从查询音源到查询音宿的有序跳序列
type Route struct {
	SourceID SourceID         `json:"source_id"`
	SinkID   SinkID           `json:"sink_id"`
	Elements []RoutingElement `json:"elements"`
}

// Hops 返回跳数
func (r Route) Hops() int {
	return len(r.Elements)
}

// Clone 深拷贝
func (r Route) Clone() Route {
	r.Elements = slices.Clone(r.Elements)
	return r
}

// Equal 比较两条路由
func (r Route) Equal(o Route) bool {
	return r.SourceID == o.SourceID && r.SinkID == o.SinkID && slices.Equal(r.Elements, o.Elements)
}

// String 返回路由的紧凑表示，如 "1->2[3]@ANALOG | 4->5[6]@STEREO"
func (r Route) String() string {
	parts := make([]string, 0, len(r.Elements))
	for _, e := range r.Elements {
		parts = append(parts, fmt.Sprintf("%d->%d[%d]@%s", e.SourceID, e.SinkID, e.DomainID, e.Format))
	}
	return strings.Join(parts, " | ")
}

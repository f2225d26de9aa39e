package client

// Reconciler 决定远端确认值如何与本地推测值合并。
// Store 的公共契约不依赖具体策略，换成更严格的合并策略不需要改 Store。
type Reconciler interface {
	// Merge 返回单元格的最终颜色。local 是当前本地值，remote 是远端确认值。
	Merge(local, remote string) string
}

// LastWriteWins 按到达顺序覆盖：远端确认值无条件胜出。
// 这是骨干交付顺序下的默认协调策略，不同客户端对刚被争抢的
// 单元格可能短暂不一致，等所有回声到齐后收敛。
type LastWriteWins struct{}

func (LastWriteWins) Merge(_, remote string) string { return remote }

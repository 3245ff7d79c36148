package loop

// Generation 单个集合的请求代数
// 每次发起重新加载取一个新代数，只接受比已应用代数更新的响应，旧响应直接丢弃
// 只在循环协程上使用
type Generation struct {
	issued  uint64
	applied uint64
}

// Next 发起新请求时调用
func (g *Generation) Next() uint64 {
	g.issued++
	return g.issued
}

// Accept 响应到达时调用，返回 false 表示已被更新的响应取代
func (g *Generation) Accept(gen uint64) bool {
	if gen <= g.applied {
		return false
	}
	g.applied = gen
	return true
}

// InFlight 是否还有未到达的请求
func (g *Generation) InFlight() bool {
	return g.issued > g.applied
}

// Invalidate 作废所有进行中的请求
func (g *Generation) Invalidate() {
	g.applied = g.issued
}

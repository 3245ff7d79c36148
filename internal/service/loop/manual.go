package loop

import (
	"context"
	"sort"
	"time"
)

// Manual 同步调度器，使用虚拟时钟，用于确定性测试
// Post 的事件按投递顺序执行；Hold 为 true 时后台调用挂起，直到 Complete
type Manual struct {
	now      time.Duration
	seq      int
	timers   []*manualTimer
	queue    []func()
	draining bool

	Hold    bool
	pending []func()
}

// NewManual 创建同步调度器
func NewManual() *Manual {
	return &Manual{}
}

// Post 入队并立即执行（嵌套投递在当前事件结束后执行）
func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
	m.drain()
}

func (m *Manual) drain() {
	if m.draining {
		return
	}
	m.draining = true
	defer func() { m.draining = false }()
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// Go 同步执行 call；Hold 时挂起，由 Complete 按顺序释放
func (m *Manual) Go(call func(ctx context.Context) error, done func(err error)) {
	job := func() {
		err := call(context.Background())
		if done != nil {
			done(err)
		}
	}
	if m.Hold {
		m.pending = append(m.pending, job)
		return
	}
	m.Post(job)
}

// Pending 挂起中的后台调用数量
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Complete 完成第 i 个挂起的后台调用
func (m *Manual) Complete(i int) {
	job := m.pending[i]
	m.pending = append(m.pending[:i], m.pending[i+1:]...)
	m.Post(job)
}

// CompleteAll 按提交顺序完成全部挂起调用
func (m *Manual) CompleteAll() {
	for len(m.pending) > 0 {
		m.Complete(0)
	}
}

// AfterFunc 注册虚拟定时器
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{due: m.now + d, seq: m.seq, fn: fn, owner: m}
	m.timers = append(m.timers, t)
	return t
}

// Now 虚拟时钟当前时间（相对起点）
func (m *Manual) Now() time.Duration {
	return m.now
}

// Advance 推进虚拟时钟，按到期顺序触发定时器
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.due
		m.remove(t)
		t.fired = true
		m.Post(t.fn)
	}
	m.now = target
}

// ActiveTimers 尚未触发且未取消的定时器数量
func (m *Manual) ActiveTimers() int {
	return len(m.timers)
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due == m.timers[j].due {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due < m.timers[j].due
	})
	if m.timers[0].due > limit {
		return nil
	}
	return m.timers[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, x := range m.timers {
		if x == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

type manualTimer struct {
	due   time.Duration
	seq   int
	fn    func()
	owner *Manual
	fired bool
}

func (t *manualTimer) Stop() bool {
	if t.fired {
		return false
	}
	before := len(t.owner.timers)
	t.owner.remove(t)
	return len(t.owner.timers) < before
}

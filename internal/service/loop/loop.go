// Package loop 提供单线程事件循环
// 所有状态迁移都在循环协程上执行完毕后才处理下一个事件
// 挂起点只在网络 I/O：阻塞调用交给 Worker Pool，结果再投递回循环
package loop

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"poly_chat_client/internal/infrastructure/worker"
)

// Timer 可取消的定时器
type Timer interface {
	// Stop 取消定时器，回调尚未在循环上执行时返回 true
	Stop() bool
}

// Scheduler 事件调度接口，组件只依赖这个接口
type Scheduler interface {
	// Post 把 fn 投递到循环上执行
	Post(fn func())
	// Go 在后台执行阻塞调用 call，完成后在循环上执行 done
	Go(call func(ctx context.Context) error, done func(err error))
	// AfterFunc d 之后在循环上执行 fn
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop 基于 channel 的事件循环
type Loop struct {
	events  chan func()
	pool    *worker.Pool
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
	stopped  chan struct{}
}

// New 创建事件循环
// timeout: 每个后台调用的超时时间，<=0 表示不设超时
func New(pool *worker.Pool, bufferSize int, timeout time.Duration) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		events:  make(chan func(), bufferSize),
		pool:    pool,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Run 阻塞执行事件，直到 ctx 取消或 Stop 被调用
func (l *Loop) Run(ctx context.Context) error {
	zap.L().Info("event loop start")
	defer zap.L().Info("event loop exit")
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stopped:
			return nil
		case fn := <-l.events:
			l.execute(fn)
		}
	}
}

// execute 执行单个事件，panic 不会终止循环
func (l *Loop) execute(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("event loop panic", zap.Any("recover", rec))
		}
	}()
	fn()
}

// Post 投递事件；循环已停止时丢弃
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.stopped:
	}
}

// Go 把 call 交给 Worker Pool 执行，结果投递回循环
func (l *Loop) Go(call func(ctx context.Context) error, done func(err error)) {
	l.pool.Submit(func() {
		ctx, cancel := l.ctx, context.CancelFunc(func() {})
		if l.timeout > 0 {
			ctx, cancel = context.WithTimeout(l.ctx, l.timeout)
		}
		err := call(ctx)
		cancel()
		if done != nil {
			l.Post(func() { done(err) })
		}
	})
}

// AfterFunc d 之后把 fn 投递到循环
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped {
				return
			}
			t.fired = true
			fn()
		})
	})
	return t
}

// Stop 停止循环并取消所有进行中的后台调用
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.cancel()
		close(l.stopped)
	})
}

// loopTimer 的 stopped/fired 只在循环协程上读写
type loopTimer struct {
	timer   *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// Package worker 提供执行阻塞任务（REST 调用等）的 Worker Pool
// 事件循环把会挂起的 I/O 交给这里，完成后再投递回循环
package worker

import (
	"sync"

	"go.uber.org/zap"
)

// Pool 固定数量的后台协程 + 缓冲通道
type Pool struct {
	taskChan  chan func()
	workerNum int
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPool 创建并启动 Worker Pool
// workerNum: 后台协程数量
// bufferSize: 通道缓冲区大小
func NewPool(workerNum, bufferSize int) *Pool {
	if workerNum <= 0 {
		workerNum = 1
	}
	p := &Pool{
		taskChan:  make(chan func(), bufferSize),
		workerNum: workerNum,
	}
	for i := 0; i < workerNum; i++ {
		p.wg.Add(1)
		go p.startWorker()
	}
	zap.L().Info("workers started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

// startWorker 启动单个 Worker 消费循环，panic 后重启
func (p *Pool) startWorker() {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("worker panic", zap.Any("recover", rec))
			go p.startWorker()
			return
		}
		p.wg.Done()
	}()

	for task := range p.taskChan {
		if task != nil {
			task()
		}
	}
}

// Submit 提交任务
// 通道已满时降级为独立协程执行，调用方（事件循环）不能被阻塞
func (p *Pool) Submit(action func()) {
	select {
	case p.taskChan <- action:
	default:
		zap.L().Warn("worker task channel full, spawning goroutine")
		go action()
	}
}

// Close 停止接收任务并等待已提交的任务执行完毕
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.taskChan)
	})
	p.wg.Wait()
}

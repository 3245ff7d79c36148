package presence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
)

// API 在线状态相关的 REST 接口
type API interface {
	ActiveUsers(ctx context.Context) ([]model.PresenceEntry, error)
	ReportPresence(ctx context.Context, req request.PresenceRequest) error
}

// Poller 固定间隔拉取在线名单快照
type Poller struct {
	tracker  *Tracker
	api      API
	sched    loop.Scheduler
	obs      projection.Observer
	interval time.Duration

	gen     loop.Generation
	timer   loop.Timer
	running bool
	failing bool
}

// NewPoller 创建轮询器
func NewPoller(tracker *Tracker, api API, sched loop.Scheduler, obs projection.Observer, interval time.Duration) *Poller {
	return &Poller{tracker: tracker, api: api, sched: sched, obs: obs, interval: interval}
}

// Start 立即拉取一次，之后每 interval 拉取一次
func (p *Poller) Start() {
	if p.running {
		return
	}
	p.running = true
	p.tick()
}

// Stop 停止轮询，进行中的请求结果会被丢弃
func (p *Poller) Stop() {
	p.running = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen.Invalidate()
}

func (p *Poller) tick() {
	if !p.running {
		return
	}
	p.Poll()
	p.timer = p.sched.AfterFunc(p.interval, p.tick)
}

// Poll 拉取一次快照
func (p *Poller) Poll() {
	gen := p.gen.Next()
	var entries []model.PresenceEntry
	p.sched.Go(func(ctx context.Context) (err error) {
		entries, err = p.api.ActiveUsers(ctx)
		return err
	}, func(err error) {
		if err != nil {
			// 连续失败只通知一次
			if !p.failing {
				projection.Failure(p.obs, "Failed to load active users", err)
			}
			p.failing = true
			return
		}
		p.failing = false
		if !p.gen.Accept(gen) {
			zap.L().Debug("stale presence snapshot dropped", zap.Uint64("gen", gen))
			return
		}
		p.tracker.ReplaceSnapshot(entries)
	})
}

// Report 上报自己的在线状态，结果只记录日志
func (p *Poller) Report(wallet, name string) {
	req := request.PresenceRequest{WalletAddress: wallet, Name: name}
	p.sched.Go(func(ctx context.Context) error {
		return p.api.ReportPresence(ctx, req)
	}, func(err error) {
		if err != nil {
			zap.L().Warn("report presence failed", zap.String("wallet", wallet), zap.Error(err))
		}
	})
}

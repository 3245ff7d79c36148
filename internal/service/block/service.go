package block

import (
	"context"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/errorx"
)

// API 黑名单相关的 REST 接口
type API interface {
	Blocked(ctx context.Context, wallet string) ([]model.BlockedUser, error)
	BlockUser(ctx context.Context, req request.BlackContactRequest) error
	UnblockUser(ctx context.Context, req request.BlackContactRequest) error
}

// Service 拉黑/取消拉黑，每次都以服务端完整列表替换本地
type Service struct {
	reg   *Registry
	api   API
	sched loop.Scheduler
	obs   projection.Observer
	self  func() string

	gen      loop.Generation
	onChange []func()
}

// NewService 创建黑名单服务
func NewService(reg *Registry, api API, sched loop.Scheduler, obs projection.Observer, self func() string) *Service {
	return &Service{reg: reg, api: api, sched: sched, obs: obs, self: self}
}

// Registry 只读访问
func (s *Service) Registry() *Registry {
	return s.reg
}

// OnChange 注册黑名单变化后的回调（重新投影各个列表）
func (s *Service) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

// Reload 拉取完整黑名单并替换
func (s *Service) Reload() {
	wallet := s.self()
	if wallet == "" {
		return
	}
	gen := s.gen.Next()
	var list []model.BlockedUser
	s.sched.Go(func(ctx context.Context) (err error) {
		list, err = s.api.Blocked(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to load blocked users", err)
			return
		}
		if wallet != s.self() || !s.gen.Accept(gen) {
			zap.L().Debug("stale blocked list dropped", zap.Uint64("gen", gen))
			return
		}
		s.apply(list)
	})
}

// Clear 登出时清空
func (s *Service) Clear() {
	s.gen.Invalidate()
	s.apply(nil)
}

func (s *Service) apply(list []model.BlockedUser) {
	s.reg.SetBlocked(list)
	s.obs.OnEvent(projection.Event{Kind: projection.BlocklistChanged, Blocked: s.reg.List()})
	for _, fn := range s.onChange {
		fn()
	}
}

// Block 拉黑 userID；成功后重新加载完整列表
func (s *Service) Block(userID string) {
	s.mutate(userID, true)
}

// Unblock 取消拉黑；之前被过滤的历史不会补发
func (s *Service) Unblock(userID string) {
	s.mutate(userID, false)
}

func (s *Service) mutate(userID string, block bool) {
	wallet := s.self()
	if wallet == "" {
		projection.Failure(s.obs, "Block", errorx.ErrNoIdentity)
		return
	}
	req := request.BlackContactRequest{BlockerId: wallet, BlockedId: userID}
	action, done := "Failed to block user", "User blocked"
	call := s.api.BlockUser
	if !block {
		action, done = "Failed to unblock user", "User unblocked"
		call = s.api.UnblockUser
	}
	s.sched.Go(func(ctx context.Context) error {
		return call(ctx, req)
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, action, err)
			return
		}
		projection.Notify(s.obs, projection.LevelSuccess, done)
		s.Reload()
	})
}

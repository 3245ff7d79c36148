// Package client 客户端门面
// 组装所有同步组件，注册长连接事件处理器，对外暴露用户动作
// 所有动作都投递到事件循环上执行，调用方可以在任意协程调用
package client

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"poly_chat_client/internal/dao/storage"
	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/gateway/websocket"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/errorx"
)

// App 客户端实例
type App struct {
	svc   *service.Services
	api   service.API
	sched loop.Scheduler
	obs   projection.Observer
	cache *storage.IdentityCache

	// wallet 当前身份，空表示未登录
	wallet  string
	profile model.UserInfo
}

// New 创建客户端；cache 为 nil 时不持久化身份
func New(rest service.API, dialer websocket.Dialer, sched loop.Scheduler, obs projection.Observer,
	cache *storage.IdentityCache, opts service.Options) *App {
	a := &App{api: rest, sched: sched, obs: obs, cache: cache}
	a.svc = service.NewServices(rest, dialer, sched, obs, a.self, opts)
	a.svc.Blocks.OnChange(a.reproject)
	a.registerHandlers()
	return a
}

// Services 内部组件，供测试和前端只读访问
func (a *App) Services() *service.Services {
	return a.svc
}

func (a *App) self() string {
	return a.wallet
}

// reproject 黑名单变化后重新投影所有可见列表
func (a *App) reproject() {
	a.svc.Presence.Publish()
	a.svc.Relations.Publish()
	a.svc.Session.Render()
}

// ==================== 生命周期 ====================

// Start 建立连接，加载房间并开始在线轮询
func (a *App) Start() {
	a.sched.Post(func() {
		a.svc.Conn.Start()
		a.svc.Rooms.Load()
		a.svc.Poller.Start()
	})
}

// Shutdown 停止轮询并断开连接，等待循环处理完毕或 ctx 超时
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	a.sched.Post(func() {
		a.svc.Poller.Stop()
		a.svc.Conn.Stop()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restore 启动时从本地存储恢复身份，先用缓存资料，再以服务端为准
func (a *App) Restore() {
	if a.cache == nil {
		return
	}
	var (
		wallet  string
		profile *model.UserInfo
	)
	a.sched.Go(func(ctx context.Context) (err error) {
		wallet, profile, err = a.cache.Load(ctx)
		return err
	}, func(err error) {
		if err != nil {
			zap.L().Warn("restore identity", zap.Error(err))
		}
		if wallet == "" || a.wallet != "" {
			return
		}
		zap.L().Info("identity restored", zap.String("wallet", wallet), zap.Bool("profile", profile != nil))
		a.login(wallet, profile, false)
	})
}

// Login 以钱包地址建立身份
func (a *App) Login(wallet string) {
	wallet = strings.TrimSpace(wallet)
	a.sched.Post(func() {
		if wallet == "" {
			projection.Failure(a.obs, "Login", errorx.New(errorx.CodeInvalidParam, "wallet address is required"))
			return
		}
		if wallet == a.wallet {
			return
		}
		if a.wallet != "" {
			a.logout()
		}
		a.login(wallet, nil, true)
	})
}

func (a *App) login(wallet string, cached *model.UserInfo, persist bool) {
	a.wallet = wallet
	a.profile = model.UserInfo{WalletAddress: wallet}
	if cached != nil {
		a.profile = *cached
	}
	a.publishIdentity()

	if persist {
		a.persist("save wallet", func(ctx context.Context) error { return a.cache.SaveWallet(ctx, wallet) })
	}
	a.joinUserChannel()
	a.svc.Session.Enter()

	a.loadProfile()
	a.svc.Blocks.Reload()
	a.svc.Relations.LoadAll()
	a.svc.Rooms.Load()
	a.svc.Rooms.LoadHidden()

	zap.L().Info("logged in", zap.String("wallet", wallet))
	projection.Notify(a.obs, projection.LevelSuccess, "Wallet connected: "+model.DefaultDisplayName(wallet))
}

// Logout 清除身份，回到未登录状态
func (a *App) Logout() {
	a.sched.Post(func() {
		if a.wallet == "" {
			return
		}
		a.logout()
		projection.Notify(a.obs, projection.LevelInfo, "Wallet disconnected")
	})
}

func (a *App) logout() {
	wallet := a.wallet
	if err := a.svc.Conn.Emit(event.Leave, event.MembershipPayload{Type: string(model.ChannelUser), RoomId: wallet}); err != nil {
		zap.L().Debug("leave user channel", zap.Error(err))
	}
	a.svc.Session.Leave()
	a.svc.Relations.Reset()
	a.svc.Rooms.ResetHidden()
	a.wallet = ""
	a.profile = model.UserInfo{}
	// Clear 会触发 reproject，此时身份已清空
	a.svc.Blocks.Clear()
	a.publishIdentity()
	a.persist("clear identity", a.clearCache)
	zap.L().Info("logged out", zap.String("wallet", wallet))
}

func (a *App) clearCache(ctx context.Context) error {
	return a.cache.Clear(ctx)
}

// joinUserChannel 加入身份专属通知频道，未连接时由重连处理器补发
func (a *App) joinUserChannel() {
	if a.wallet == "" {
		return
	}
	err := a.svc.Conn.Emit(event.Join, event.MembershipPayload{Type: string(model.ChannelUser), RoomId: a.wallet})
	if err != nil {
		zap.L().Debug("join user channel deferred", zap.Error(err))
	}
}

// loadProfile 拉取服务端资料，覆盖缓存，并上报在线状态
func (a *App) loadProfile() {
	wallet := a.wallet
	var p model.UserInfo
	a.sched.Go(func(ctx context.Context) (err error) {
		p, err = a.api.GetProfile(ctx, wallet)
		return err
	}, func(err error) {
		if wallet != a.wallet {
			return
		}
		if err != nil {
			projection.Failure(a.obs, "Failed to load profile", err)
			a.svc.Poller.Report(wallet, a.profile.NameOrDefault())
			return
		}
		if p.WalletAddress == "" {
			p.WalletAddress = wallet
		}
		a.applyProfile(p)
		a.svc.Poller.Report(wallet, p.NameOrDefault())
	})
}

// applyProfile 更新自己的资料并写入缓存
func (a *App) applyProfile(p model.UserInfo) {
	a.profile = p
	a.persist("save profile", func(ctx context.Context) error { return a.cache.SaveProfile(ctx, p) })
	a.obs.OnEvent(projection.Event{Kind: projection.ProfileChanged, Profile: p})
}

func (a *App) publishIdentity() {
	a.obs.OnEvent(projection.Event{Kind: projection.IdentityChanged, UserID: a.wallet, Profile: a.profile})
}

// persist 本地存储写入失败只记录日志
func (a *App) persist(what string, fn func(ctx context.Context) error) {
	if a.cache == nil {
		return
	}
	a.sched.Go(fn, func(err error) {
		if err != nil {
			zap.L().Warn(what, zap.Int("code", errorx.GetCode(err)), zap.Error(err))
		}
	})
}

// requireIdentity 未登录时发出错误通知
func (a *App) requireIdentity(action string) bool {
	if a.wallet == "" {
		projection.Failure(a.obs, action, errorx.ErrNoIdentity)
		return false
	}
	return true
}

// Package service 提供客户端同步层
// 本文件实现组件的依赖注入和聚合
package service

import (
	"time"

	"poly_chat_client/internal/config"
	"poly_chat_client/internal/gateway/websocket"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/connection"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/message"
	"poly_chat_client/internal/service/presence"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/internal/service/relationship"
	"poly_chat_client/internal/service/room"
	"poly_chat_client/internal/service/session"
)

// Options 组件的可调参数
type Options struct {
	ReconnectInterval time.Duration
	PresenceInterval  time.Duration
	TypingDelay       time.Duration
	HistoryLimit      int
}

// OptionsFrom 从配置读取参数
func OptionsFrom(conf *config.Config) Options {
	return Options{
		ReconnectInterval: conf.ReconnectInterval(),
		PresenceInterval:  conf.PresencePollInterval(),
		TypingDelay:       conf.TypingClearDelay(),
		HistoryLimit:      conf.HistoryLimit,
	}
}

// Services 聚合所有组件实例
// 每个集合只有一个所有者，其他组件通过只读接口访问
type Services struct {
	Blocks    *block.Service
	Messages  *message.Deduper
	Presence  *presence.Tracker
	Poller    *presence.Poller
	Relations *relationship.Store
	Rooms     *room.Directory
	Session   *session.Manager
	Conn      *connection.Supervisor
}

// NewServices 创建并注入所有组件
// 依赖注入流程：
//  1. 黑名单最先创建，其余组件都以它为过滤器
//  2. 连接监督者同时作为会话管理器的发送端
//  3. 会话管理器最后创建，依赖房间目录和私聊索引做解析
//
// self: 返回当前身份，未登录时为空
func NewServices(rest API, dialer websocket.Dialer, sched loop.Scheduler, obs projection.Observer, self func() string, opts Options) *Services {
	registry := block.NewRegistry()
	blocks := block.NewService(registry, rest, sched, obs, self)
	dedup := message.NewDeduper(registry)

	tracker := presence.NewTracker(registry, obs)
	poller := presence.NewPoller(tracker, rest, sched, obs, opts.PresenceInterval)

	relations := relationship.NewStore(rest, sched, obs, registry, self)
	rooms := room.NewDirectory(rest, sched, obs, self)
	conn := connection.NewSupervisor(dialer, sched, obs, opts.ReconnectInterval)

	sess := session.NewManager(conn, rest, dedup, registry, rooms, relations, sched, obs, self, session.Options{
		HistoryLimit: opts.HistoryLimit,
		TypingDelay:  opts.TypingDelay,
	})

	return &Services{
		Blocks:    blocks,
		Messages:  dedup,
		Presence:  tracker,
		Poller:    poller,
		Relations: relations,
		Rooms:     rooms,
		Session:   sess,
		Conn:      conn,
	}
}

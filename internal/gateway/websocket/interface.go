// Package websocket 封装到服务端的长连接
// 上层（ConnectionSupervisor）只依赖 Dialer / Conn 接口，便于替换为测试实现
package websocket

import (
	"context"

	"poly_chat_client/internal/dto/event"
)

// Callbacks 连接上的回调，都在读协程上调用
type Callbacks struct {
	// OnFrame 收到一帧事件
	OnFrame func(env event.Envelope)
	// OnClose 连接断开（只调用一次），主动 Close 时 err 为 nil
	OnClose func(err error)
}

// Conn 一次已建立的连接
type Conn interface {
	// ID 连接标识，用于日志和区分过期的断开通知
	ID() string
	// Emit 发送事件，不阻塞
	Emit(name string, payload any) error
	// Close 主动关闭
	Close() error
}

// Dialer 建立连接
type Dialer interface {
	Dial(ctx context.Context, cb Callbacks) (Conn, error)
}

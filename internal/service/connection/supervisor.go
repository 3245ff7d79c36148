// Package connection 管理到服务端的长连接生命周期
// 断线不拆除任何本地状态，按固定间隔无限重连，重连后由 Connect 处理器重新加入频道
package connection

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/gateway/websocket"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/constants"
	"poly_chat_client/pkg/errorx"
)

// State 连接状态
type State string

const (
	Connecting   State = "connecting"
	Connected    State = "connected"
	Disconnected State = "disconnected"
)

// Handler 处理一个推送事件，在事件循环上执行
type Handler func(data json.RawMessage)

// Supervisor 连接监督者
type Supervisor struct {
	dialer   websocket.Dialer
	sched    loop.Scheduler
	obs      projection.Observer
	interval time.Duration

	handlers map[string][]Handler

	running bool
	state   State
	conn    websocket.Conn
	// epoch 每次拨号递增，旧连接的回调据此丢弃
	epoch    uint64
	retry    loop.Timer
	attempts int
}

// NewSupervisor 创建监督者，interval 为重连间隔
func NewSupervisor(dialer websocket.Dialer, sched loop.Scheduler, obs projection.Observer, interval time.Duration) *Supervisor {
	if interval <= 0 {
		interval = constants.RECONNECT_INTERVAL
	}
	return &Supervisor{
		dialer:   dialer,
		sched:    sched,
		obs:      obs,
		interval: interval,
		handlers: map[string][]Handler{},
		state:    Disconnected,
	}
}

// On 注册事件处理器
// event.Connect / event.Disconnect 由监督者在连接建立和断开时合成
func (s *Supervisor) On(name string, h Handler) {
	s.handlers[name] = append(s.handlers[name], h)
}

// State 当前连接状态
func (s *Supervisor) State() State {
	return s.state
}

// Start 开始连接，重复调用无副作用
func (s *Supervisor) Start() {
	if s.running {
		return
	}
	s.running = true
	s.dial()
}

// Stop 关闭连接并停止重连
func (s *Supervisor) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.epoch++
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.setState(Disconnected)
}

// Emit 发送事件，未连接时返回 ErrNotConnected
func (s *Supervisor) Emit(name string, payload any) error {
	if s.state != Connected || s.conn == nil {
		return errorx.ErrNotConnected
	}
	return s.conn.Emit(name, payload)
}

func (s *Supervisor) dial() {
	s.epoch++
	epoch := s.epoch
	s.attempts++
	s.setState(Connecting)

	cb := websocket.Callbacks{
		OnFrame: func(env event.Envelope) {
			s.sched.Post(func() { s.onFrame(epoch, env) })
		},
		OnClose: func(err error) {
			s.sched.Post(func() { s.onClose(epoch, err) })
		},
	}
	var conn websocket.Conn
	s.sched.Go(func(ctx context.Context) (err error) {
		conn, err = s.dialer.Dial(ctx, cb)
		return err
	}, func(err error) {
		if epoch != s.epoch {
			// 拨号期间已 Stop
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
		if err != nil {
			zap.L().Warn("connect failed", zap.Int("attempt", s.attempts), zap.Error(err))
			s.setState(Disconnected)
			s.scheduleRetry()
			return
		}
		s.conn = conn
		s.attempts = 0
		s.setState(Connected)
		zap.L().Info("connected", zap.String("conn", conn.ID()))
		s.dispatch(event.Connect, nil)
	})
}

func (s *Supervisor) onFrame(epoch uint64, env event.Envelope) {
	if epoch != s.epoch {
		return
	}
	if len(s.handlers[env.Event]) == 0 {
		zap.L().Debug("unhandled event", zap.String("event", env.Event))
		return
	}
	s.dispatch(env.Event, env.Data)
}

func (s *Supervisor) onClose(epoch uint64, err error) {
	if epoch != s.epoch {
		return
	}
	zap.L().Warn("disconnected", zap.Error(err))
	s.conn = nil
	s.setState(Disconnected)
	s.dispatch(event.Disconnect, nil)
	s.scheduleRetry()
}

func (s *Supervisor) scheduleRetry() {
	if !s.running {
		return
	}
	if s.retry != nil {
		s.retry.Stop()
	}
	s.retry = s.sched.AfterFunc(s.interval, func() {
		s.retry = nil
		if s.running && s.state == Disconnected {
			s.dial()
		}
	})
}

func (s *Supervisor) dispatch(name string, data json.RawMessage) {
	for _, h := range s.handlers[name] {
		h(data)
	}
}

func (s *Supervisor) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.obs.OnEvent(projection.Event{Kind: projection.ConnectionChanged, State: string(st)})
}

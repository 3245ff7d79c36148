package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/infrastructure/logger"
	"poly_chat_client/pkg/constants"
	"poly_chat_client/pkg/errorx"
)

// GorillaDialer 基于 gorilla/websocket 的 Dialer
type GorillaDialer struct {
	URL              string
	HandshakeTimeout time.Duration
	Header           http.Header
}

// NewDialer 创建 Dialer
func NewDialer(url string, handshakeTimeout time.Duration) *GorillaDialer {
	return &GorillaDialer{URL: url, HandshakeTimeout: handshakeTimeout}
}

// Dial 握手成功后启动读写协程
func (d *GorillaDialer) Dial(ctx context.Context, cb Callbacks) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   2048,
		WriteBufferSize:  2048,
	}
	ws, resp, err := dialer.DialContext(ctx, d.URL, d.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeTransport, "dial %s", d.URL)
	}
	id := uuid.NewString()
	c := &client{
		id:     id,
		conn:   ws,
		send:   make(chan []byte, constants.CHANNEL_SIZE),
		done:   make(chan struct{}),
		cb:     cb,
		logger: zap.L().With(zap.String("conn", id)),
	}
	go c.Read()
	go c.Write()
	c.logger.Info("ws connected", zap.String("url", d.URL))
	return c, nil
}

// client 一条 gorilla 连接，读写各一个协程
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	cb     Callbacks
	logger *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

func (c *client) ID() string { return c.id }

// Read 读取服务端推送并交给 OnFrame，出错即断开
func (c *client) Read() {
	c.logger.Debug("ws read goroutine start")
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}
		var env event.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("ws frame decode failed", zap.Error(err), zap.ByteString("frame", raw))
			continue
		}
		if env.Event == "" {
			continue
		}
		if c.cb.OnFrame != nil {
			c.cb.OnFrame(env)
		}
	}
}

// Write 从 send 通道取出帧写入连接
func (c *client) Write() {
	c.logger.Debug("ws write goroutine start")
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.TRANSPORT_WRITE_TIMEOUT))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.shutdown(err)
				return
			}
		}
	}
}

// Emit 编码并放入发送队列；队列满或已关闭时返回传输错误
func (c *client) Emit(name string, payload any) error {
	frame, err := event.Encode(name, payload)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeTransport, "encode %s", name)
	}
	select {
	case <-c.done:
		return errorx.ErrNotConnected
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return errorx.ErrNotConnected
	default:
		return errorx.Newf(errorx.CodeTransport, "send queue full, dropped %s", name)
	}
}

// Close 主动关闭，发送 close 帧
func (c *client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.shutdown(nil)
	return c.closeErr
}

// shutdown 只执行一次：关闭底层连接并通知 OnClose
func (c *client) shutdown(cause error) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.conn.Close()
		switch {
		case cause == nil:
			c.logger.Info("ws closed")
		case websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway),
			logger.IsBrokenPipeError(cause), errors.Is(cause, net.ErrClosed):
			c.logger.Info("ws disconnected", zap.Error(cause))
		default:
			c.logger.Error("ws disconnected", zap.Error(cause))
		}
		if c.cb.OnClose != nil {
			c.cb.OnClose(cause)
		}
	})
}

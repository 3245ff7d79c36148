// Package session 维护当前活跃会话
// 同一时刻最多一个会话（公共房间或私聊）处于 joined 状态
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/message"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/constants"
)

// State 会话状态
type State string

const (
	Disconnected  State = "disconnected"
	JoinedPublic  State = "joined_public"
	JoinedPrivate State = "joined_private"
)

// Emitter 长连接发送端
type Emitter interface {
	Emit(name string, payload any) error
}

// HistoryAPI 拉取会话历史
type HistoryAPI interface {
	GetMessageList(ctx context.Context, req request.GetMessageListRequest) ([]model.Message, error)
}

// Rooms 公共房间解析
type Rooms interface {
	Matches(key, roomID string) bool
	Label(key string) string
	Description(key string) string
	Load()
}

// Chats 私聊解析
type Chats interface {
	ChatByRoom(privateRoomID string) (model.PrivateChat, bool)
}

// Options 可调参数
type Options struct {
	HistoryLimit int
	TypingDelay  time.Duration
}

// Manager 会话管理器，只在事件循环上调用
type Manager struct {
	emitter Emitter
	api     HistoryAPI
	dedup   *message.Deduper
	blocks  block.Checker
	rooms   Rooms
	chats   Chats
	sched   loop.Scheduler
	obs     projection.Observer
	self    func() string
	opts    Options

	active     model.Conversation
	historyGen loop.Generation

	typingTimer  loop.Timer
	remoteTyping string
}

// NewManager 创建会话管理器
func NewManager(emitter Emitter, api HistoryAPI, dedup *message.Deduper, blocks block.Checker,
	rooms Rooms, chats Chats, sched loop.Scheduler, obs projection.Observer, self func() string, opts Options) *Manager {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = constants.HISTORY_LIMIT
	}
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = constants.TYPING_CLEAR_DELAY
	}
	return &Manager{
		emitter: emitter,
		api:     api,
		dedup:   dedup,
		blocks:  blocks,
		rooms:   rooms,
		chats:   chats,
		sched:   sched,
		obs:     obs,
		self:    self,
		opts:    opts,
	}
}

// State 当前状态
func (m *Manager) State() State {
	switch {
	case m.active.IsZero():
		return Disconnected
	case m.active.Type == model.ConversationPrivate:
		return JoinedPrivate
	default:
		return JoinedPublic
	}
}

// Active 当前会话，没有时为零值
func (m *Manager) Active() model.Conversation {
	return m.active
}

// Enter 获得身份后进入默认房间
func (m *Manager) Enter() {
	m.SwitchToRoom(constants.DEFAULT_ROOM)
}

// SwitchToRoom 切换到公共房间，目标与当前相同时无操作
func (m *Manager) SwitchToRoom(key string) {
	if key == "" {
		return
	}
	m.switchTo(model.PublicConversation(key))
}

// SwitchToPrivate 切换到私聊
func (m *Manager) SwitchToPrivate(privateRoomID string) {
	if privateRoomID == "" {
		return
	}
	m.switchTo(model.PrivateConversation(privateRoomID))
}

func (m *Manager) switchTo(next model.Conversation) {
	if m.active.Same(next) {
		return
	}
	m.stopTyping()
	m.hideRemoteTyping()

	if !m.active.IsZero() {
		m.emitMembership(event.Leave, m.active)
	}
	m.emitMembership(event.Join, next)

	m.active = m.decorate(next)
	zap.L().Info("conversation switched", zap.String("conversation", m.active.Key()))
	m.obs.OnEvent(projection.Event{Kind: projection.ConversationChanged, Conversation: m.active})
	m.ReloadHistory()
}

// Leave 登出时离开当前会话并清空
func (m *Manager) Leave() {
	m.stopTyping()
	m.hideRemoteTyping()
	if !m.active.IsZero() {
		m.emitMembership(event.Leave, m.active)
	}
	m.historyGen.Invalidate()
	m.active = model.Conversation{}
	m.dedup.Reset()
	m.obs.OnEvent(projection.Event{Kind: projection.ConversationChanged})
}

// Rejoin 重连后只重新加入当前会话
func (m *Manager) Rejoin() {
	if m.active.IsZero() {
		return
	}
	m.emitMembership(event.Join, m.active)
}

func (m *Manager) emitMembership(name string, conv model.Conversation) {
	err := m.emitter.Emit(name, event.MembershipPayload{Type: string(conv.Type), RoomId: conv.ID})
	if err != nil {
		// 断线期间忽略，重连后由 Rejoin 恢复
		zap.L().Debug("membership not sent", zap.String("event", name), zap.String("conversation", conv.Key()), zap.Error(err))
	}
}

func (m *Manager) decorate(conv model.Conversation) model.Conversation {
	switch conv.Type {
	case model.ConversationPublic:
		conv.Label = m.rooms.Label(conv.ID)
		conv.Description = m.rooms.Description(conv.ID)
	case model.ConversationPrivate:
		conv.Label = conv.ID
		conv.Description = constants.PRIVATE_ROOM_DESC
		if chat, ok := m.chats.ChatByRoom(conv.ID); ok {
			conv.Label = chat.DisplayName
		}
	}
	return conv
}

// ReloadHistory 拉取当前会话历史并整体替换
// 切换后到达的旧会话响应被丢弃
func (m *Manager) ReloadHistory() {
	conv := m.active
	if conv.IsZero() {
		return
	}
	req := request.GetMessageListRequest{Limit: m.opts.HistoryLimit}
	if conv.Type == model.ConversationPrivate {
		req.PrivateRoom = conv.ID
	} else {
		req.Room = conv.ID
	}
	gen := m.historyGen.Next()
	var msgs []model.Message
	m.sched.Go(func(ctx context.Context) (err error) {
		msgs, err = m.api.GetMessageList(ctx, req)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(m.obs, "Failed to load messages", err)
			return
		}
		if !m.historyGen.Accept(gen) || !m.active.Same(conv) {
			zap.L().Debug("stale history dropped", zap.String("conversation", conv.Key()))
			return
		}
		m.dedup.Replace(conv, msgs)
		m.Render()
	})
}

// Render 重新投影当前会话（黑名单或资料变化后）
func (m *Manager) Render() {
	if m.active.IsZero() {
		return
	}
	m.obs.OnEvent(projection.Event{
		Kind:         projection.HistoryReplaced,
		Conversation: m.active,
		Messages:     m.dedup.Visible(m.active, m.self()),
	})
	m.obs.OnEvent(projection.Event{Kind: projection.ScrollToLatest, Conversation: m.active})
}

// addresses 消息是否属于当前会话
func (m *Manager) addresses(msg model.Message) bool {
	switch m.active.Type {
	case model.ConversationPrivate:
		return msg.PrivateRoomID == m.active.ID
	case model.ConversationPublic:
		return msg.PrivateRoomID == "" && m.rooms.Matches(m.active.ID, msg.RoomID)
	}
	return false
}

// OnInboundMessage 处理推送或本地回显的消息
// 黑名单作者、非当前会话、重复 id 的消息都被丢弃
func (m *Manager) OnInboundMessage(msg model.Message) bool {
	if m.blocks.IsBlocked(msg.AuthorID) || !m.addresses(msg) {
		return false
	}
	if !m.dedup.Insert(m.active, msg) {
		return false
	}
	if msg.AuthorID == m.remoteTyping {
		m.hideRemoteTyping()
	}
	stored, _ := m.dedup.Get(m.active, msg.ID)
	m.obs.OnEvent(projection.Event{Kind: projection.MessageAppended, Conversation: m.active, Message: stored})
	m.obs.OnEvent(projection.Event{Kind: projection.ScrollToLatest, Conversation: m.active})
	return true
}

// OnDeletion 处理删除推送
// 对所有人删除时替换为墓碑；只对自己删除时仅当操作者是当前身份才隐藏
func (m *Manager) OnDeletion(p event.MessageDeletedPayload) {
	self := m.self()
	if !p.DeleteForAll && (self == "" || p.WalletAddress != self) {
		return
	}
	conv, msg, ok := m.dedup.MarkDeleted(p.MessageId, p.DeleteForAll, self)
	if !ok || !conv.Same(m.active) {
		return
	}
	if p.DeleteForAll {
		m.obs.OnEvent(projection.Event{Kind: projection.MessageTombstoned, Conversation: m.active, Message: msg, MessageID: msg.ID})
		return
	}
	m.obs.OnEvent(projection.Event{Kind: projection.MessageRemoved, Conversation: m.active, MessageID: msg.ID})
}

// OnTyping 远端输入状态，忽略自己和黑名单用户
func (m *Manager) OnTyping(p event.UserTypingPayload) {
	if m.active.IsZero() || p.UserId == "" || p.UserId == m.self() || m.blocks.IsBlocked(p.UserId) {
		return
	}
	if p.IsTyping {
		m.remoteTyping = p.UserId
		m.obs.OnEvent(projection.Event{Kind: projection.TypingShown, UserID: p.UserId, DisplayName: p.DisplayName})
		return
	}
	if m.remoteTyping == p.UserId {
		m.hideRemoteTyping()
	}
}

func (m *Manager) hideRemoteTyping() {
	if m.remoteTyping == "" {
		return
	}
	id := m.remoteTyping
	m.remoteTyping = ""
	m.obs.OnEvent(projection.Event{Kind: projection.TypingHidden, UserID: id})
}

// OnKeystroke 每次按键发送 typing=true，并重置唯一的清除定时器
func (m *Manager) OnKeystroke() {
	self := m.self()
	if m.active.IsZero() || self == "" {
		return
	}
	conv := m.active
	m.emitTyping(self, conv, true)
	if m.typingTimer != nil {
		m.typingTimer.Stop()
	}
	m.typingTimer = m.sched.AfterFunc(m.opts.TypingDelay, func() {
		m.typingTimer = nil
		m.emitTyping(self, conv, false)
		m.obs.OnEvent(projection.Event{Kind: projection.LocalTypingCleared, Conversation: conv})
	})
}

func (m *Manager) emitTyping(self string, conv model.Conversation, typing bool) {
	err := m.emitter.Emit(event.Typing, event.TypingPayload{
		UserId:   self,
		RoomId:   conv.ID,
		Type:     string(conv.Type),
		IsTyping: typing,
	})
	if err != nil {
		zap.L().Debug("typing not sent", zap.Bool("typing", typing), zap.Error(err))
	}
}

// stopTyping 切换或登出时静默取消本地输入定时器
func (m *Manager) stopTyping() {
	if m.typingTimer != nil {
		m.typingTimer.Stop()
		m.typingTimer = nil
	}
}

// OnRoomDeleted 当前房间被删除时回到默认房间，并刷新目录
func (m *Manager) OnRoomDeleted(p event.RoomDeletedPayload) {
	if p.RoomName != "" {
		m.dedup.Forget(model.PublicConversation(p.RoomName))
	}
	if m.active.Type == model.ConversationPublic {
		id := m.active.ID
		if id == p.RoomId || id == p.RoomName || m.rooms.Matches(id, p.RoomId) {
			projection.Notify(m.obs, projection.LevelInfo, `Room "`+m.active.Label+`" was deleted`)
			m.SwitchToRoom(constants.DEFAULT_ROOM)
			m.dedup.Forget(model.PublicConversation(id))
		}
	}
	m.rooms.Load()
}

// OnProfileUpdated 改写冗余作者信息并重绘
func (m *Manager) OnProfileUpdated(userID, displayName, avatar string) {
	m.dedup.RenameAuthor(userID, displayName, avatar)
	if m.active.Type == model.ConversationPrivate {
		if chat, ok := m.chats.ChatByRoom(m.active.ID); ok && chat.UserID == userID && displayName != "" {
			m.active.Label = displayName
			m.obs.OnEvent(projection.Event{Kind: projection.ConversationChanged, Conversation: m.active})
		}
	}
	m.Render()
}

// Package relationship 缓存好友、收到的好友申请和私聊索引
// 服务端是唯一数据源：推送只作为失效信号触发重新加载，本地不做增量修改
package relationship

import (
	"context"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/errorx"
)

// API 好友相关的 REST 接口
type API interface {
	Friends(ctx context.Context, wallet string) ([]model.Friend, error)
	IncomingRequests(ctx context.Context, wallet string) ([]model.FriendRequest, error)
	PrivateChats(ctx context.Context, wallet string) ([]model.PrivateChat, error)
	SendFriendRequest(ctx context.Context, req request.ApplyFriendRequest) (*respond.StatusRespond, error)
	RespondFriendRequest(ctx context.Context, req request.PassContactApplyRequest) (*respond.StatusRespond, error)
}

// Store 三个集合各自按快照整体替换
type Store struct {
	api    API
	sched  loop.Scheduler
	obs    projection.Observer
	blocks block.Checker
	self   func() string

	friends  []model.Friend
	requests []model.FriendRequest
	chats    []model.PrivateChat

	friendsGen  loop.Generation
	requestsGen loop.Generation
	chatsGen    loop.Generation
}

// NewStore 创建关系缓存
func NewStore(api API, sched loop.Scheduler, obs projection.Observer, blocks block.Checker, self func() string) *Store {
	return &Store{api: api, sched: sched, obs: obs, blocks: blocks, self: self}
}

// ==================== 加载 ====================

// LoadAll 登录后加载全部集合
func (s *Store) LoadAll() {
	s.LoadFriends()
	s.LoadIncomingRequests()
	s.LoadPrivateChats()
}

// LoadFriends 拉取好友列表并整体替换
func (s *Store) LoadFriends() {
	wallet := s.self()
	if wallet == "" {
		return
	}
	gen := s.friendsGen.Next()
	var list []model.Friend
	s.sched.Go(func(ctx context.Context) (err error) {
		list, err = s.api.Friends(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to load friends", err)
			return
		}
		if s.accept(wallet, &s.friendsGen, gen, "friends") {
			s.friends = list
			s.publishFriends()
		}
	})
}

// LoadIncomingRequests 拉取收到的待处理申请并整体替换
func (s *Store) LoadIncomingRequests() {
	wallet := s.self()
	if wallet == "" {
		return
	}
	gen := s.requestsGen.Next()
	var list []model.FriendRequest
	s.sched.Go(func(ctx context.Context) (err error) {
		list, err = s.api.IncomingRequests(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to load friend requests", err)
			return
		}
		if s.accept(wallet, &s.requestsGen, gen, "requests") {
			s.requests = list
			s.publishRequests()
		}
	})
}

// LoadPrivateChats 拉取私聊列表并整体替换
func (s *Store) LoadPrivateChats() {
	wallet := s.self()
	if wallet == "" {
		return
	}
	gen := s.chatsGen.Next()
	var list []model.PrivateChat
	s.sched.Go(func(ctx context.Context) (err error) {
		list, err = s.api.PrivateChats(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to load private chats", err)
			return
		}
		if s.accept(wallet, &s.chatsGen, gen, "private_chats") {
			s.chats = list
			s.publishChats()
		}
	})
}

// reloadFriendsAndChats 好友和私聊在同一次调度中获取并同时应用
// 界面不会看到"已是好友但没有私聊"的中间状态
func (s *Store) reloadFriendsAndChats() {
	wallet := s.self()
	if wallet == "" {
		return
	}
	fg, cg := s.friendsGen.Next(), s.chatsGen.Next()
	var (
		friends []model.Friend
		chats   []model.PrivateChat
	)
	s.sched.Go(func(ctx context.Context) (err error) {
		if friends, err = s.api.Friends(ctx, wallet); err != nil {
			return err
		}
		chats, err = s.api.PrivateChats(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to load friends", err)
			return
		}
		if s.accept(wallet, &s.friendsGen, fg, "friends") {
			s.friends = friends
		}
		if s.accept(wallet, &s.chatsGen, cg, "private_chats") {
			s.chats = chats
		}
		s.publishFriends()
		s.publishChats()
	})
}

// accept 身份未变且响应未被更新的请求取代
func (s *Store) accept(wallet string, g *loop.Generation, gen uint64, what string) bool {
	if wallet != s.self() || !g.Accept(gen) {
		zap.L().Debug("stale relationship response dropped", zap.String("collection", what), zap.Uint64("gen", gen))
		return false
	}
	return true
}

// ==================== 推送 ====================

// ApplyRequestReceived friend_request：重新加载收到的申请
func (s *Store) ApplyRequestReceived(p event.FriendRequestPayload) {
	if s.blocks.IsBlocked(p.SenderId) {
		return
	}
	name := p.SenderName
	if name == "" {
		name = model.DefaultDisplayName(p.SenderId)
	}
	projection.Notify(s.obs, projection.LevelInfo, name+" sent you a friend request")
	s.LoadIncomingRequests()
}

// ApplyRequestAccepted friend_request_accepted：好友和私聊一起重新加载
func (s *Store) ApplyRequestAccepted(p event.FriendRequestPayload) {
	if s.blocks.IsBlocked(p.ReceiverId) {
		return
	}
	name := p.ReceiverName
	if name == "" {
		name = model.DefaultDisplayName(p.ReceiverId)
	}
	projection.Notify(s.obs, projection.LevelSuccess, name+" accepted your friend request")
	s.reloadFriendsAndChats()
}

// ApplyRequestRejected friend_request_rejected：重新加载收到的申请
func (s *Store) ApplyRequestRejected(p event.FriendRequestPayload) {
	if p.ReceiverId != "" && s.blocks.IsBlocked(p.ReceiverId) {
		return
	}
	projection.Notify(s.obs, projection.LevelInfo, "Your friend request was rejected")
	s.LoadIncomingRequests()
}

// ==================== 用户操作 ====================

// SendRequest 发送好友申请；只有 REST 成功后才提示，本地状态不变
func (s *Store) SendRequest(receiverID string) {
	wallet := s.self()
	if wallet == "" {
		projection.Failure(s.obs, "Failed to send friend request", errorx.ErrNoIdentity)
		return
	}
	req := request.ApplyFriendRequest{SenderId: wallet, ReceiverId: receiverID}
	s.sched.Go(func(ctx context.Context) error {
		_, err := s.api.SendFriendRequest(ctx, req)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to send friend request", err)
			return
		}
		projection.Notify(s.obs, projection.LevelSuccess, "Friend request sent")
	})
}

// Accept 通过 senderID 的申请
func (s *Store) Accept(senderID string) {
	s.respond(senderID, model.RequestAccepted)
}

// Reject 拒绝 senderID 的申请
func (s *Store) Reject(senderID string) {
	s.respond(senderID, model.RequestRejected)
}

func (s *Store) respond(senderID string, to model.RequestStatus) {
	wallet := s.self()
	if wallet == "" {
		projection.Failure(s.obs, "Failed to respond to friend request", errorx.ErrNoIdentity)
		return
	}
	req, ok := s.findRequest(senderID)
	if !ok {
		req = model.FriendRequest{SenderID: senderID, ReceiverID: wallet, Status: model.RequestPending}
	}
	// 在副本上校验迁移，服务端确认前不改本地
	if err := req.Transition(to); err != nil {
		projection.Failure(s.obs, "Failed to respond to friend request", err)
		return
	}
	action := "accept"
	if to == model.RequestRejected {
		action = "reject"
	}
	body := request.PassContactApplyRequest{Action: action, SenderId: senderID, ReceiverId: wallet}
	s.sched.Go(func(ctx context.Context) error {
		_, err := s.api.RespondFriendRequest(ctx, body)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(s.obs, "Failed to "+action+" friend request", err)
			return
		}
		if to == model.RequestAccepted {
			projection.Notify(s.obs, projection.LevelSuccess, "Friend request accepted")
			s.reloadFriendsAndChats()
		} else {
			projection.Notify(s.obs, projection.LevelInfo, "Friend request rejected")
		}
		s.LoadIncomingRequests()
	})
}

func (s *Store) findRequest(senderID string) (model.FriendRequest, bool) {
	for _, r := range s.requests {
		if r.SenderID == senderID {
			return r, true
		}
	}
	return model.FriendRequest{}, false
}

// ==================== 访问器（经黑名单过滤） ====================

// Friends 对外可见好友
func (s *Store) Friends() []model.Friend {
	out := make([]model.Friend, 0, len(s.friends))
	for _, f := range s.friends {
		if !s.blocks.IsBlocked(f.WalletAddress) {
			out = append(out, f)
		}
	}
	return out
}

// IncomingRequests 对外可见的待处理申请
func (s *Store) IncomingRequests() []model.FriendRequest {
	out := make([]model.FriendRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if r.Status.IsTerminal() || s.blocks.IsBlocked(r.SenderID) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// PrivateChats 对外可见私聊
func (s *Store) PrivateChats() []model.PrivateChat {
	out := make([]model.PrivateChat, 0, len(s.chats))
	for _, c := range s.chats {
		if !s.blocks.IsBlocked(c.UserID) {
			out = append(out, c)
		}
	}
	return out
}

// PrivateRoomWith 与 userID 的私聊房间
func (s *Store) PrivateRoomWith(userID string) (string, bool) {
	for _, c := range s.chats {
		if c.UserID == userID {
			return c.ID, true
		}
	}
	for _, f := range s.friends {
		if f.WalletAddress == userID && f.PrivateRoomID != "" {
			return f.PrivateRoomID, true
		}
	}
	return "", false
}

// ChatByRoom 按私聊房间 id 查找
func (s *Store) ChatByRoom(privateRoomID string) (model.PrivateChat, bool) {
	for _, c := range s.chats {
		if c.ID == privateRoomID {
			return c, true
		}
	}
	return model.PrivateChat{}, false
}

// UpdateProfile 资料更新推送后改写冗余的昵称和头像，不触发重新加载
func (s *Store) UpdateProfile(userID, displayName, avatar string) {
	changed := false
	for i := range s.friends {
		if s.friends[i].WalletAddress == userID {
			s.friends[i].DisplayName, s.friends[i].Avatar = pick(displayName, s.friends[i].DisplayName), pick(avatar, s.friends[i].Avatar)
			changed = true
		}
	}
	for i := range s.chats {
		if s.chats[i].UserID == userID {
			s.chats[i].DisplayName, s.chats[i].Avatar = pick(displayName, s.chats[i].DisplayName), pick(avatar, s.chats[i].Avatar)
			changed = true
		}
	}
	if changed {
		s.publishFriends()
		s.publishChats()
	}
}

// Publish 重新投影三个集合（黑名单变化后调用）
func (s *Store) Publish() {
	s.publishFriends()
	s.publishRequests()
	s.publishChats()
}

// Reset 登出时清空，进行中的请求结果作废
func (s *Store) Reset() {
	s.friendsGen.Invalidate()
	s.requestsGen.Invalidate()
	s.chatsGen.Invalidate()
	s.friends, s.requests, s.chats = nil, nil, nil
	s.Publish()
}

func (s *Store) publishFriends() {
	s.obs.OnEvent(projection.Event{Kind: projection.FriendsChanged, Friends: s.Friends()})
}

func (s *Store) publishRequests() {
	s.obs.OnEvent(projection.Event{Kind: projection.RequestsChanged, Requests: s.IncomingRequests()})
}

func (s *Store) publishChats() {
	s.obs.OnEvent(projection.Event{Kind: projection.PrivateChatsChanged, PrivateChats: s.PrivateChats()})
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

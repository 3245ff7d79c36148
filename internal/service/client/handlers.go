package client

import (
	"encoding/json"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/projection"
)

// registerHandlers 注册长连接推送处理器
func (a *App) registerHandlers() {
	conn := a.svc.Conn
	conn.On(event.Connect, func(json.RawMessage) { a.onConnect() })
	conn.On(event.Disconnect, func(json.RawMessage) {
		projection.Notify(a.obs, projection.LevelError, "Disconnected from server, reconnecting...")
	})
	conn.On(event.Joined, func(data json.RawMessage) {
		zap.L().Debug("joined", zap.ByteString("data", data))
	})

	on(a, event.NewMessage, func(m model.Message) { a.svc.Session.OnInboundMessage(m) })
	on(a, event.MessageDeleted, a.svc.Session.OnDeletion)
	on(a, event.UserTyping, a.svc.Session.OnTyping)
	on(a, event.UserConnected, a.onUserConnected)
	on(a, event.UserDisconnected, a.onUserDisconnected)
	on(a, event.ProfileUpdated, a.onProfileUpdated)
	on(a, event.FriendRequest, a.svc.Relations.ApplyRequestReceived)
	on(a, event.FriendRequestAccepted, a.svc.Relations.ApplyRequestAccepted)
	on(a, event.FriendRequestRejected, a.svc.Relations.ApplyRequestRejected)
	on(a, event.RoomDeleted, a.svc.Session.OnRoomDeleted)
}

// on 注册带类型的处理器，负载解析失败时丢弃该帧
func on[T any](a *App, name string, fn func(T)) {
	a.svc.Conn.On(name, func(data json.RawMessage) {
		var payload T
		if err := json.Unmarshal(data, &payload); err != nil {
			zap.L().Warn("malformed payload", zap.String("event", name), zap.Error(err))
			return
		}
		fn(payload)
	})
}

// onConnect 连接（重新）建立：加入身份频道，再只加入当前会话
func (a *App) onConnect() {
	if a.wallet == "" {
		return
	}
	a.joinUserChannel()
	a.svc.Session.Rejoin()
	// 断线期间可能漏掉推送，以服务端历史为准
	a.svc.Session.ReloadHistory()
}

func (a *App) onUserConnected(p event.UserConnectedPayload) {
	if p.UserId == "" || a.svc.Blocks.Registry().IsBlocked(p.UserId) {
		return
	}
	entry := model.PresenceEntry{UserID: p.UserId, DisplayName: p.Name, Avatar: p.Avatar}
	if !a.svc.Presence.ApplyJoin(p.UserId, entry) || p.UserId == a.wallet {
		return
	}
	name := p.Name
	if name == "" {
		name = model.DefaultDisplayName(p.UserId)
	}
	projection.Notify(a.obs, projection.LevelInfo, name+" joined the chat")
}

func (a *App) onUserDisconnected(p event.UserDisconnectedPayload) {
	entry, ok := a.svc.Presence.ApplyLeave(p.UserId)
	if !ok || p.UserId == a.wallet {
		return
	}
	projection.Notify(a.obs, projection.LevelInfo, entry.DisplayName+" left the chat")
}

func (a *App) onProfileUpdated(p event.ProfileUpdatedPayload) {
	if p.WalletAddress == "" || a.svc.Blocks.Registry().IsBlocked(p.WalletAddress) {
		return
	}
	a.svc.Presence.UpdateProfile(p.WalletAddress, p.DisplayName, p.Avatar)
	a.svc.Relations.UpdateProfile(p.WalletAddress, p.DisplayName, p.Avatar)
	a.svc.Session.OnProfileUpdated(p.WalletAddress, p.DisplayName, p.Avatar)

	if p.WalletAddress != a.wallet {
		return
	}
	profile := a.profile
	if p.DisplayName != "" {
		profile.DisplayName = p.DisplayName
	}
	if p.Avatar != "" {
		profile.Avatar = p.Avatar
	}
	if p.Bio != "" {
		profile.Bio = p.Bio
	}
	a.applyProfile(profile)
}

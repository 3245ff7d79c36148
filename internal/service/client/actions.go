package client

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/constants"
	"poly_chat_client/pkg/errorx"
)

// ==================== 会话 ====================

// SwitchRoom 切换到公共房间（房间名或 id）
func (a *App) SwitchRoom(key string) {
	a.sched.Post(func() {
		if !a.requireIdentity("Switch room") {
			return
		}
		a.svc.Session.SwitchToRoom(key)
	})
}

// OpenPrivateChat 打开与好友的私聊，peer 可以是对方钱包地址或私聊房间 id
func (a *App) OpenPrivateChat(peer string) {
	a.sched.Post(func() {
		if !a.requireIdentity("Open private chat") {
			return
		}
		if roomID, ok := a.svc.Relations.PrivateRoomWith(peer); ok {
			a.svc.Session.SwitchToPrivate(roomID)
			return
		}
		if _, ok := a.svc.Relations.ChatByRoom(peer); ok {
			a.svc.Session.SwitchToPrivate(peer)
			return
		}
		projection.Failure(a.obs, "Open private chat", errorx.New(errorx.CodeNotFound, "no private chat with this user"))
	})
}

// Keystroke 输入框内容变化
func (a *App) Keystroke() {
	a.sched.Post(a.svc.Session.OnKeystroke)
}

// ==================== 消息 ====================

// messageRequest 按当前会话填充 room / privateRoomId
func (a *App) messageRequest(content string) (request.ChatMessageRequest, bool) {
	active := a.svc.Session.Active()
	if active.IsZero() {
		return request.ChatMessageRequest{}, false
	}
	req := request.ChatMessageRequest{Content: content, WalletAddress: a.wallet}
	if active.Type == model.ConversationPrivate {
		req.PrivateRoomId = active.ID
	} else {
		req.Room = active.ID
	}
	return req, true
}

// SendMessage 发送文本消息，成功后本地回显（与服务端广播去重）
func (a *App) SendMessage(content string) {
	content = strings.TrimSpace(content)
	a.sched.Post(func() {
		if !a.requireIdentity("Failed to send message") {
			return
		}
		req, ok := a.messageRequest(content)
		if !ok {
			return
		}
		a.send(req)
	})
}

func (a *App) send(req request.ChatMessageRequest) {
	var msg model.Message
	a.sched.Go(func(ctx context.Context) (err error) {
		msg, err = a.api.SendMessage(ctx, req)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(a.obs, "Failed to send message", err)
			return
		}
		a.svc.Session.OnInboundMessage(msg)
	})
}

// SendFile 上传文件后发送图片或文件消息，caption 可为空
func (a *App) SendFile(path, caption string) {
	caption = strings.TrimSpace(caption)
	a.sched.Post(func() {
		if !a.requireIdentity("Failed to upload file") {
			return
		}
		req, ok := a.messageRequest(caption)
		if !ok {
			return
		}
		wallet := a.wallet
		var (
			uploaded *respond.UploadFileRespond
			mimeType string
		)
		a.sched.Go(func(ctx context.Context) (err error) {
			uploaded, mimeType, err = a.upload(ctx, wallet, path, a.api.UploadFile)
			return err
		}, func(err error) {
			if err != nil {
				projection.Failure(a.obs, "Failed to upload file", err)
				return
			}
			req.Type = string(model.KindFromMIME(mimeType))
			req.FileUrl = uploaded.FileUrl
			req.FileName = uploaded.FileName
			a.send(req)
		})
	})
}

// upload 打开本地文件并流式上传，在 worker 上执行
func (a *App) upload(ctx context.Context, wallet, path string,
	call func(context.Context, request.UploadFileRequest) (*respond.UploadFileRespond, error)) (*respond.UploadFileRespond, string, error) {
	f, info, err := openUpload(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	req := request.UploadFileRequest{
		WalletAddress: wallet,
		FileName:      info.Name(),
		MimeType:      mimeOf(path),
		Size:          info.Size(),
		Body:          f,
	}
	rsp, err := call(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if rsp.FileName == "" {
		rsp.FileName = info.Name()
	}
	return rsp, req.MimeType, nil
}

func openUpload(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.CodeInvalidParam, "cannot open "+filepath.Base(path))
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errorx.Wrap(err, errorx.CodeInvalidParam, "cannot read "+filepath.Base(path))
	}
	if info.Size() > constants.FILE_MAX_SIZE {
		_ = f.Close()
		return nil, nil, errorx.New(errorx.CodeInvalidParam, "File size exceeds 16MB limit")
	}
	return f, info, nil
}

func mimeOf(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// DeleteMessage 删除消息，界面更新由 message_deleted 推送驱动
func (a *App) DeleteMessage(messageID string, forAll bool) {
	a.sched.Post(func() {
		if !a.requireIdentity("Failed to delete message") {
			return
		}
		wallet := a.wallet
		a.sched.Go(func(ctx context.Context) error {
			_, err := a.api.DeleteMessage(ctx, wallet, messageID, forAll)
			return err
		}, func(err error) {
			if err != nil {
				projection.Failure(a.obs, "Failed to delete message", err)
			}
		})
	})
}

// ==================== 黑名单与好友 ====================

// Block 拉黑用户
func (a *App) Block(userID string) {
	a.sched.Post(func() { a.svc.Blocks.Block(userID) })
}

// Unblock 取消拉黑
func (a *App) Unblock(userID string) {
	a.sched.Post(func() { a.svc.Blocks.Unblock(userID) })
}

// SendFriendRequest 发送好友申请
func (a *App) SendFriendRequest(userID string) {
	a.sched.Post(func() { a.svc.Relations.SendRequest(userID) })
}

// AcceptFriendRequest 通过好友申请
func (a *App) AcceptFriendRequest(senderID string) {
	a.sched.Post(func() { a.svc.Relations.Accept(senderID) })
}

// RejectFriendRequest 拒绝好友申请
func (a *App) RejectFriendRequest(senderID string) {
	a.sched.Post(func() { a.svc.Relations.Reject(senderID) })
}

// SearchUsers 搜索用户，结果排除自己和黑名单
func (a *App) SearchUsers(query string) {
	query = strings.TrimSpace(query)
	a.sched.Post(func() {
		req := request.SearchUsersRequest{Query: query}
		var users []model.UserInfo
		a.sched.Go(func(ctx context.Context) (err error) {
			users, err = a.api.SearchUsers(ctx, req)
			return err
		}, func(err error) {
			if err != nil {
				projection.Failure(a.obs, "Failed to search users", err)
				return
			}
			out := users[:0]
			for _, u := range users {
				if u.WalletAddress == a.wallet || a.svc.Blocks.Registry().IsBlocked(u.WalletAddress) {
					continue
				}
				out = append(out, u)
			}
			a.obs.OnEvent(projection.Event{Kind: projection.SearchResults, Users: out, Text: query})
		})
	})
}

// ==================== 资料 ====================

// UpdateProfile 更新昵称和简介
func (a *App) UpdateProfile(displayName, bio string) {
	a.sched.Post(func() {
		if !a.requireIdentity("Failed to update profile") {
			return
		}
		wallet := a.wallet
		req := request.UpdateUserInfoRequest{
			WalletAddress: wallet,
			DisplayName:   strings.TrimSpace(displayName),
			Bio:           strings.TrimSpace(bio),
			Avatar:        a.profile.Avatar,
		}
		var p model.UserInfo
		a.sched.Go(func(ctx context.Context) (err error) {
			p, err = a.api.UpdateProfile(ctx, req)
			return err
		}, func(err error) {
			if err != nil {
				projection.Failure(a.obs, "Failed to update profile", err)
				return
			}
			if wallet != a.wallet {
				return
			}
			if p.WalletAddress == "" {
				p = a.profile
				p.DisplayName, p.Bio = req.DisplayName, req.Bio
			}
			a.applyProfile(p)
			a.svc.Poller.Report(wallet, p.NameOrDefault())
			projection.Notify(a.obs, projection.LevelSuccess, "Profile updated")
		})
	})
}

// UploadAvatar 上传头像
func (a *App) UploadAvatar(path string) {
	a.sched.Post(func() {
		if !a.requireIdentity("Failed to upload avatar") {
			return
		}
		wallet := a.wallet
		var avatar string
		a.sched.Go(func(ctx context.Context) error {
			_, _, err := a.upload(ctx, wallet, path, func(ctx context.Context, req request.UploadFileRequest) (*respond.UploadFileRespond, error) {
				rsp, err := a.api.UploadAvatar(ctx, req)
				if err != nil {
					return nil, err
				}
				avatar = rsp.Avatar
				return &respond.UploadFileRespond{Success: rsp.Success, FileUrl: rsp.Avatar, FileName: req.FileName}, nil
			})
			return err
		}, func(err error) {
			if err != nil {
				projection.Failure(a.obs, "Failed to upload avatar", err)
				return
			}
			if wallet != a.wallet {
				return
			}
			p := a.profile
			p.Avatar = avatar
			a.applyProfile(p)
			projection.Notify(a.obs, projection.LevelSuccess, "Avatar updated")
		})
	})
}

// ==================== 房间 ====================

// activeIs 当前公共会话是否就是 key 指向的房间
func (a *App) activeIs(key string) bool {
	active := a.svc.Session.Active()
	if active.Type != model.ConversationPublic {
		return false
	}
	return active.ID == key || a.svc.Rooms.Matches(active.ID, a.svc.Rooms.ResolveID(key))
}

// HideRoom 隐藏房间；隐藏的是当前房间时切换到第一个其他房间
func (a *App) HideRoom(key string) {
	a.sched.Post(func() {
		next := a.svc.Rooms.FirstOther(key)
		a.svc.Rooms.Hide(key, func() {
			if a.activeIs(key) {
				a.svc.Session.SwitchToRoom(next)
			}
		})
	})
}

// DeleteRoom 删除房间；删除的是当前房间时回到默认房间
func (a *App) DeleteRoom(key string) {
	a.sched.Post(func() {
		a.svc.Rooms.Delete(key, func() {
			if a.activeIs(key) {
				zap.L().Info("active room deleted", zap.String("room", key))
				a.svc.Session.SwitchToRoom(constants.DEFAULT_ROOM)
			}
		})
	})
}

// UnhideRoom 取消隐藏
func (a *App) UnhideRoom(roomID string) {
	a.sched.Post(func() { a.svc.Rooms.Unhide(roomID) })
}

// Refresh 重新投影全部列表，供前端首次渲染
func (a *App) Refresh() {
	a.sched.Post(func() {
		a.publishIdentity()
		a.reproject()
		a.obs.OnEvent(projection.Event{Kind: projection.BlocklistChanged, Blocked: a.svc.Blocks.Registry().List()})
		a.svc.Rooms.Replace(a.svc.Rooms.Rooms())
	})
}

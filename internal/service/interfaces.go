// Package service 聚合客户端的同步组件
// 本文件定义组件依赖的服务端 REST 接口集合
// 接口按组件拆分，gateway/api.Client 实现全部方法，测试中可替换为内存实现
package service

import (
	"context"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/gateway/api"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/presence"
	"poly_chat_client/internal/service/relationship"
	"poly_chat_client/internal/service/room"
	"poly_chat_client/internal/service/session"
)

// MessageAPI 消息发送、删除和附件上传
type MessageAPI interface {
	// SendMessage 发送消息，返回服务端落库后的消息（带 id）
	SendMessage(ctx context.Context, req request.ChatMessageRequest) (model.Message, error)
	// DeleteMessage 删除消息，forAll 为 true 时对所有人删除
	DeleteMessage(ctx context.Context, wallet, messageID string, forAll bool) (*respond.DeleteMessageRespond, error)
	// UploadFile 上传图片或文件，返回资源地址
	UploadFile(ctx context.Context, req request.UploadFileRequest) (*respond.UploadFileRespond, error)
}

// ProfileAPI 个人资料和用户搜索
type ProfileAPI interface {
	GetProfile(ctx context.Context, wallet string) (model.UserInfo, error)
	UpdateProfile(ctx context.Context, req request.UpdateUserInfoRequest) (model.UserInfo, error)
	UploadAvatar(ctx context.Context, req request.UploadFileRequest) (*respond.AvatarRespond, error)
	SearchUsers(ctx context.Context, req request.SearchUsersRequest) ([]model.UserInfo, error)
}

// API 客户端用到的全部 REST 接口
type API interface {
	block.API
	presence.API
	relationship.API
	room.API
	session.HistoryAPI
	MessageAPI
	ProfileAPI
}

var _ API = (*api.Client)(nil)

// Package model 定义客户端领域模型
// 本文件定义消息模型，字段与服务端 JSON 一一对应
package model

import "strings"

// MessageKind 消息类型
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
)

// KindFromMIME 根据上传文件的 MIME 类型推断消息类型
func KindFromMIME(mime string) MessageKind {
	if strings.HasPrefix(mime, "image/") {
		return KindImage
	}
	return KindFile
}

// Message 聊天消息
// 创建后不可变，唯一例外是 Deleted 墓碑标记
type Message struct {
	// ID 消息唯一标识，去重的依据
	ID string `json:"id"`

	// RoomID 公共房间消息所属房间（服务端返回房间 id）
	RoomID string `json:"roomId,omitempty"`

	// PrivateRoomID 私聊消息所属私聊房间
	// 与 RoomID 互斥
	PrivateRoomID string `json:"privateRoomId,omitempty"`

	// AuthorID 发送者钱包地址
	AuthorID string `json:"walletAddress"`

	// AuthorName 发送者昵称，冗余存储，资料更新推送时会被改写
	AuthorName string `json:"displayName,omitempty"`

	// AuthorAvatar 发送者头像
	AuthorAvatar string `json:"avatar,omitempty"`

	// Timestamp 服务端时间戳（秒），仅用于展示，不参与排序
	Timestamp int64 `json:"timestamp"`

	Kind    MessageKind `json:"type"`
	Content string      `json:"content"`

	// FileURL / FileName 图片或文件消息的资源引用
	FileURL  string `json:"fileUrl,omitempty"`
	FileName string `json:"fileName,omitempty"`

	// Deleted 对所有人删除后的墓碑标记
	Deleted bool `json:"isDeleted"`
}

// Conversation 返回消息所寻址的会话引用
func (m Message) Conversation() Conversation {
	if m.PrivateRoomID != "" {
		return PrivateConversation(m.PrivateRoomID)
	}
	return PublicConversation(m.RoomID)
}

// Tombstone 返回对所有人删除后的占位消息
func (m Message) Tombstone(placeholder string) Message {
	m.Deleted = true
	m.Content = placeholder
	m.Kind = KindText
	m.FileURL = ""
	m.FileName = ""
	return m
}

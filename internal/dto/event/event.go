// Package event 定义长连接上收发的事件名和负载
// 帧格式: {"event": "<name>", "data": {...}}
package event

import "encoding/json"

// 服务端推送事件
const (
	Connect               = "connect"
	Disconnect            = "disconnect"
	NewMessage            = "new_message"
	MessageDeleted        = "message_deleted"
	UserTyping            = "user_typing"
	UserConnected         = "user_connected"
	UserDisconnected      = "user_disconnected"
	ProfileUpdated        = "profile_updated"
	FriendRequest         = "friend_request"
	FriendRequestAccepted = "friend_request_accepted"
	FriendRequestRejected = "friend_request_rejected"
	RoomDeleted           = "room_deleted"
	Joined                = "joined"
)

// 客户端发出事件
const (
	Join   = "join"
	Leave  = "leave"
	Typing = "typing"
)

// Envelope 一帧长连接消息
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MembershipPayload join / leave 负载，Type 取 user|public|private
type MembershipPayload struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId"`
}

// TypingPayload 本地输入状态
type TypingPayload struct {
	UserId   string `json:"userId"`
	RoomId   string `json:"roomId"`
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

// MessageDeletedPayload message_deleted
type MessageDeletedPayload struct {
	MessageId     string `json:"messageId"`
	DeleteForAll  bool   `json:"deleteForAll"`
	WalletAddress string `json:"walletAddress"`
}

// UserTypingPayload user_typing
type UserTypingPayload struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
	IsTyping    bool   `json:"isTyping"`
}

// UserConnectedPayload user_connected
type UserConnectedPayload struct {
	UserId string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// UserDisconnectedPayload user_disconnected
type UserDisconnectedPayload struct {
	UserId string `json:"userId"`
}

// ProfileUpdatedPayload profile_updated
type ProfileUpdatedPayload struct {
	WalletAddress string `json:"walletAddress"`
	DisplayName   string `json:"displayName"`
	Avatar        string `json:"avatar"`
	Bio           string `json:"bio,omitempty"`
}

// FriendRequestPayload friend_request / friend_request_accepted / friend_request_rejected
type FriendRequestPayload struct {
	SenderId      string `json:"senderId"`
	SenderName    string `json:"senderName,omitempty"`
	SenderAvatar  string `json:"senderAvatar,omitempty"`
	ReceiverId    string `json:"receiverId,omitempty"`
	ReceiverName  string `json:"receiverName,omitempty"`
	PrivateRoomId string `json:"privateRoomId,omitempty"`
}

// RoomDeletedPayload room_deleted
type RoomDeletedPayload struct {
	RoomId   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

// Encode 将负载编码为一帧
func Encode(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: name, Data: data})
}

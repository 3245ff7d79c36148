package model

import (
	"encoding/json"

	"poly_chat_client/pkg/errorx"
)

// RequestStatus 好友申请状态
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest 有向好友申请 sender -> receiver
// 状态只能 pending -> accepted / rejected，终态不可再变
type FriendRequest struct {
	SenderID     string        `json:"senderId"`
	SenderName   string        `json:"senderName,omitempty"`
	SenderAvatar string        `json:"senderAvatar,omitempty"`
	ReceiverID   string        `json:"receiverId"`
	ReceiverName string        `json:"receiverName,omitempty"`
	Status       RequestStatus `json:"status"`
	CreatedAt    string        `json:"createdAt,omitempty"`
}

// UnmarshalJSON 服务端未返回 status 时按 pending 处理
func (r *FriendRequest) UnmarshalJSON(data []byte) error {
	type raw FriendRequest
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Status == "" {
		v.Status = RequestPending
	}
	*r = FriendRequest(v)
	return nil
}

// IsTerminal 是否已处于终态
func (s RequestStatus) IsTerminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

// CanTransition 校验状态迁移是否合法
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	if s != RequestPending {
		return false
	}
	return to == RequestAccepted || to == RequestRejected
}

// Transition 执行状态迁移，非法迁移返回参数错误且不修改状态
func (r *FriendRequest) Transition(to RequestStatus) error {
	if !r.Status.CanTransition(to) {
		return errorx.Newf(errorx.CodeInvalidParam, "friend request is already %s", r.Status)
	}
	r.Status = to
	return nil
}

// Peer 返回申请中相对 self 的另一方
func (r FriendRequest) Peer(self string) string {
	if r.SenderID == self {
		return r.ReceiverID
	}
	return r.SenderID
}

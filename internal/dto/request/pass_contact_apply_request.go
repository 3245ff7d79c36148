package request

// PassContactApplyRequest 处理收到的好友申请（通过或拒绝）
// 使用位置:
//   - gateway/api/friends.go: RespondFriendRequest
type PassContactApplyRequest struct {
	// Action 路径参数 /api/friends/request/{action}
	Action string `json:"-" validate:"oneof=accept reject"`
	// SenderId 申请人
	SenderId string `json:"senderId" validate:"required"`
	// ReceiverId 当前身份
	ReceiverId string `json:"receiverId" validate:"required"`
}

package request

// ApplyFriendRequest 发送好友申请
// 使用位置:
//   - gateway/api/friends.go: SendFriendRequest
//   - service/relationship/store.go: SendRequest
type ApplyFriendRequest struct {
	// SenderId 申请人（当前身份）
	SenderId string `json:"senderId" validate:"required"`
	// ReceiverId 被申请人，不能是自己
	ReceiverId string `json:"receiverId" validate:"required,nefield=SenderId"`
}

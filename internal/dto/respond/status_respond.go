package respond

// StatusRespond 通用操作结果
// 使用位置:
//   - gateway/api/friends.go: SendFriendRequest, RespondFriendRequest
//   - gateway/api/users.go: BlockUser, UnblockUser, ReportPresence
type StatusRespond struct {
	Success       bool   `json:"success"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message,omitempty"`
	PrivateRoomId string `json:"privateRoomId,omitempty"`
}

package request

// BlackContactRequest 拉黑/取消拉黑
// 使用位置:
//   - gateway/api/users.go: BlockUser, UnblockUser
type BlackContactRequest struct {
	BlockerId string `json:"blockerId" validate:"required"`
	BlockedId string `json:"blockedId" validate:"required,nefield=BlockerId"`
}

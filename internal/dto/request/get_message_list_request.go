package request

// GetMessageListRequest 拉取会话历史 (GET /api/messages)
// 使用位置:
//   - gateway/api/messages.go: GetMessageList
type GetMessageListRequest struct {
	Room        string `json:"room" validate:"required_without=PrivateRoom"`
	PrivateRoom string `json:"privateRoom"`
	Limit       int    `json:"limit" validate:"gte=0,lte=500"`
}

package request

// ChatMessageRequest 发送消息 (POST /api/messages)
// Room 与 PrivateRoomId 二选一，文本内容与文件链接至少有一个
// 使用位置:
//   - gateway/api/messages.go: SendMessage
type ChatMessageRequest struct {
	Content       string `json:"content" validate:"required_without=FileUrl,max=4000"`
	WalletAddress string `json:"walletAddress" validate:"required"`
	Room          string `json:"room,omitempty" validate:"required_without=PrivateRoomId,excluded_with=PrivateRoomId"`
	PrivateRoomId string `json:"privateRoomId,omitempty"`
	Type          string `json:"type,omitempty" validate:"omitempty,oneof=text image file"`
	FileUrl       string `json:"fileUrl,omitempty"`
	FileName      string `json:"fileName,omitempty"`
}

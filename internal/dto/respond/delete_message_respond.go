package respond

// DeleteMessageRespond 删除消息响应 (DELETE /api/messages/{id})
type DeleteMessageRespond struct {
	Success   bool   `json:"success"`
	MessageId string `json:"messageId"`
}

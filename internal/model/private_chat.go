package model

// PrivateChat 私聊绑定 (self, UserID) -> ID
type PrivateChat struct {
	ID          string   `json:"id"`
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Avatar      string   `json:"avatar"`
	LastActive  string   `json:"lastActive,omitempty"`
	LastMessage *Message `json:"lastMessage,omitempty"`
}

// Preview 会话列表中展示的最后一条消息摘要
func (p PrivateChat) Preview() string {
	if p.LastMessage == nil {
		return "No messages yet"
	}
	switch p.LastMessage.Kind {
	case KindImage:
		return "Image"
	case KindFile:
		return "File"
	}
	content := []rune(p.LastMessage.Content)
	if len(content) > 20 {
		return string(content[:20]) + "..."
	}
	return string(content)
}

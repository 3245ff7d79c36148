package model

// ConversationType 会话类型，同时也是 join/leave/typing 的 type 字段
type ConversationType string

const (
	ConversationPublic  ConversationType = "public"
	ConversationPrivate ConversationType = "private"
	// ChannelUser 身份专属通知频道，不是会话，只用于 join/leave
	ChannelUser ConversationType = "user"
)

// Conversation 公共房间或私聊，二者互斥
// 判等只看 Type + ID，Label/Description 只用于展示
type Conversation struct {
	Type        ConversationType
	ID          string
	Label       string
	Description string
}

// PublicConversation 构造公共房间引用
func PublicConversation(roomID string) Conversation {
	return Conversation{Type: ConversationPublic, ID: roomID}
}

// PrivateConversation 构造私聊引用
func PrivateConversation(privateRoomID string) Conversation {
	return Conversation{Type: ConversationPrivate, ID: privateRoomID}
}

// IsZero 没有任何活跃会话
func (c Conversation) IsZero() bool {
	return c.Type == "" || c.ID == ""
}

// Same 是否指向同一个会话
func (c Conversation) Same(o Conversation) bool {
	return c.Type == o.Type && c.ID == o.ID
}

// Key 用作 map 键
func (c Conversation) Key() string {
	return string(c.Type) + ":" + c.ID
}

func (c Conversation) String() string {
	return c.Key()
}

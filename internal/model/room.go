package model

// Room 公共房间，/api/rooms 返回以房间名为键的 map
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

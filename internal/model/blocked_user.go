package model

// BlockedUser 被当前身份拉黑的用户 (blocker = 当前身份)
type BlockedUser struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

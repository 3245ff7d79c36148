package model

// Friend 好友，PrivateRoomID 为双方私聊房间
type Friend struct {
	WalletAddress string `json:"walletAddress"`
	DisplayName   string `json:"displayName"`
	Avatar        string `json:"avatar"`
	Bio           string `json:"bio,omitempty"`
	PrivateRoomID string `json:"privateRoomId,omitempty"`
}

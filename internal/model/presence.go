package model

// PresenceEntry 在线用户条目，完全由最近一次快照/推送派生
type PresenceEntry struct {
	UserID      string `json:"walletAddress"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}
